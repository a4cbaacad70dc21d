// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/versacard/internal/pipeline"
	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <input>",
	Short: "Re-convert an input every time it changes",
	Long: `Watch converts the input once, then watches it and converts again
after each change, always writing to the same vCard file. For a folder
input, adding, editing, or removing a .vcf file triggers a new merge.

Press Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)
	debounce, _ := cmd.Flags().GetDuration("debounce")

	input := pipeline.NormalizePath(args[0])
	output := cfg.Output
	if output == "" {
		output = pipeline.DefaultOutputName(cfg.Workdir, time.Now())
	}
	if err := checkWatchOutput(input, output); err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd)
	defer stop()

	p := newPipeline(cmd, cfg.PipelineConfig)
	msg := progress.NewMessenger(cmd.ErrOrStderr())

	refresh := func(ctx context.Context) error {
		if _, err := importInput(ctx, p, input, msg); err != nil {
			return userError(err)
		}
		if cfg.SwapNames {
			if _, err := p.SwapNames(ctx); err != nil && !errors.Is(err, pipeline.ErrNoRecords) {
				return userError(err)
			}
		}
		if err := p.Save(ctx, output); err != nil {
			if errors.Is(err, pipeline.ErrNoRecords) {
				msg.Message("There are no records to save!")
				return nil
			}
			return userError(err)
		}
		msg.Message("Success! " + output)
		return nil
	}

	if err := refresh(ctx); err != nil {
		return err
	}

	w, err := watch.New(input, debounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	msg.Message(fmt.Sprintf("Watching %s for changes...", input))
	// Run logs callback errors and keeps watching, so a bad edit does not
	// end the session.
	return w.Run(ctx, func(ctx context.Context) error {
		err := refresh(ctx)
		if err != nil {
			msg.Message(err.Error())
		}
		return err
	})
}

// checkWatchOutput rejects an output file that would itself trigger the
// watcher: a .vcf written into the folder being merged.
func checkWatchOutput(input, output string) error {
	in, err := filepath.Abs(input)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	if filepath.Dir(out) == in {
		return fmt.Errorf("output %s is inside the watched folder %s", output, input)
	}
	return nil
}

func init() {
	watchCmd.Flags().StringP("output", "o", "", "vCard output path (default: <workdir>/contacts_<ms>.vcf)")
	watchCmd.Flags().Bool("swap-names", false, "exchange first and last names before writing")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period after a change before converting")

	rootCmd.AddCommand(watchCmd)
}
