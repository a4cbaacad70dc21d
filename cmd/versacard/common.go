// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/versacard/internal/pbb"
	"github.com/pdiddy/versacard/internal/pipeline"
	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

// pipelineConfig reads the shared settings from flags, environment, and
// config file.
func pipelineConfig() types.PipelineConfig {
	workdir := viper.GetString("workdir")
	if workdir == "" {
		workdir = "."
	}
	return types.PipelineConfig{
		Workdir:      workdir,
		Verbose:      viper.GetBool("verbose"),
		ShowProgress: viper.GetBool("progress"),
	}
}

func newPipeline(cmd *cobra.Command, cfg types.PipelineConfig) *pipeline.Pipeline {
	var rep progress.Reporter = progress.Nop{}
	if cfg.ShowProgress {
		rep = progress.NewBar(cmd.ErrOrStderr())
	}
	return pipeline.New(pipeline.Options{Progress: rep, Logger: logger})
}

// interruptContext returns a context cancelled on Ctrl-C, so a long import
// stops cooperatively and keeps what it has committed.
func interruptContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

// importInput runs an import and reports its outcome to the user.
func importInput(ctx context.Context, p *pipeline.Pipeline, input string, msg *progress.Messenger) (pipeline.Summary, error) {
	sum, err := p.Import(ctx, input)
	if err != nil {
		return sum, err
	}

	for _, name := range sum.Skipped {
		msg.Message(name + " cannot be opened. Skipped.")
	}
	if sum.Kind == pipeline.KindUnknown {
		msg.Message(fmt.Sprintf("Unrecognized input %s: expected .pbb, .monosim, or a folder of .vcf files.", sum.Input))
	}
	if sum.CountMismatch {
		declared := "none"
		if sum.TotalExpected != pbb.TotalUnset {
			declared = fmt.Sprint(sum.TotalExpected)
		}
		msg.Message(fmt.Sprintf("Records total in pbb file (%s) does not match records detected (%d).", declared, sum.Records))
	}
	if sum.Cancelled {
		msg.Message("Import cancelled; continuing with the records read so far.")
	}
	msg.Count(sum.Count())
	return sum, nil
}

// userError turns pipeline sentinel errors into the messages shown to the
// user, keeping the wrapped cause for errors.Is.
func userError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pipeline.ErrInputNotFound):
		return fmt.Errorf("the input source cannot be found: %w", err)
	case errors.Is(err, pipeline.ErrInputNotReadable):
		return fmt.Errorf("the input source cannot be opened: %w", err)
	case errors.Is(err, pipeline.ErrOutputNotWritable):
		return fmt.Errorf("the output file cannot be opened for writing: %w", err)
	default:
		return err
	}
}
