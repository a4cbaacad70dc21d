// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/versacard/internal/pipeline"
	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Import contacts and write them as a vCard file",
	Long: `Convert imports contacts from a .pbb backup, a .monosim export, or a
folder of .vcf files and writes them as one vCard 3.0 file.

Without --output the file is saved to the work directory as
contacts_<milliseconds>.vcf. Use --print to write the vCard text to
stdout instead. A file: URL is accepted as input.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var swapCmd = &cobra.Command{
	Use:   "swap <input>",
	Short: "Import contacts, swap first and last names, and write vCard",
	Long: `Swap behaves like convert with --swap-names: after the import every
record has its first and last name exchanged before the vCard text is
generated. Useful for phonebooks that stored "Last First".`,
	Args: cobra.ExactArgs(1),
	RunE: runSwap,
}

func runConvert(cmd *cobra.Command, args []string) error {
	return convert(cmd, args[0], convertConfig(cmd))
}

func runSwap(cmd *cobra.Command, args []string) error {
	cfg := convertConfig(cmd)
	cfg.SwapNames = true
	return convert(cmd, args[0], cfg)
}

func convert(cmd *cobra.Command, input string, cfg types.ConvertConfig) error {
	ctx, stop := interruptContext(cmd)
	defer stop()

	p := newPipeline(cmd, cfg.PipelineConfig)
	msg := progress.NewMessenger(cmd.ErrOrStderr())

	if _, err := importInput(ctx, p, input, msg); err != nil {
		return userError(err)
	}

	if cfg.SwapNames {
		n, err := p.SwapNames(ctx)
		if errors.Is(err, pipeline.ErrNoRecords) {
			msg.Message("There are no records to save!")
			return nil
		}
		if err != nil {
			return userError(err)
		}
		logger.Debug("names swapped")
		msg.Message(fmt.Sprintf("Swapped names in %d record(s).", n))
	}

	if cfg.Print {
		if len(p.Records()) == 0 {
			msg.Message("There are no records to save!")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), p.Text())
		return nil
	}

	output := cfg.Output
	if output == "" {
		output = pipeline.DefaultOutputName(cfg.Workdir, time.Now())
	}
	if err := p.Save(ctx, output); err != nil {
		if errors.Is(err, pipeline.ErrNoRecords) {
			msg.Message("There are no records to save!")
			return nil
		}
		return userError(err)
	}

	msg.Message("Success!")
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

func convertConfig(cmd *cobra.Command) types.ConvertConfig {
	output, _ := cmd.Flags().GetString("output")
	swapNames, _ := cmd.Flags().GetBool("swap-names")
	printText, _ := cmd.Flags().GetBool("print")

	return types.ConvertConfig{
		PipelineConfig: pipelineConfig(),
		Output:         output,
		SwapNames:      swapNames,
		Print:          printText,
	}
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "vCard output path (default: <workdir>/contacts_<ms>.vcf)")
	convertCmd.Flags().Bool("swap-names", false, "exchange first and last names before writing")
	convertCmd.Flags().Bool("print", false, "write the vCard text to stdout instead of a file")

	swapCmd.Flags().StringP("output", "o", "", "vCard output path (default: <workdir>/contacts_<ms>.vcf)")
	swapCmd.Flags().Bool("print", false, "write the vCard text to stdout instead of a file")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(swapCmd)
}
