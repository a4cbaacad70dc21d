// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/versacard/internal/export"
	"github.com/pdiddy/versacard/internal/progress"
	"github.com/pdiddy/versacard/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <input>",
	Short: "Export imported contacts to YAML, JSON, or SQLite",
	Long: `Export imports contacts like convert and writes the record set with
its field classification instead of vCard text.

YAML and JSON go to stdout unless --output is given. The sqlite format
writes a contact store to --output, or <workdir>/contacts.db, replacing
any contacts it held.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := exportConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd)
	defer stop()

	p := newPipeline(cmd, cfg.PipelineConfig)
	msg := progress.NewMessenger(cmd.ErrOrStderr())
	if _, err := importInput(ctx, p, args[0], msg); err != nil {
		return userError(err)
	}
	rs := p.Records()
	if len(rs) == 0 {
		msg.Message("There are no records to save!")
		return nil
	}

	switch cfg.Format {
	case types.ExportSQLite:
		path := cfg.Output
		if path == "" {
			path = filepath.Join(cfg.Workdir, "contacts.db")
		}
		store, err := export.OpenStore(path)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(ctx, rs); err != nil {
			return err
		}
		contacts, fields, err := store.Count(ctx)
		if err != nil {
			return err
		}
		logger.Debug("contact store written")
		msg.Message(fmt.Sprintf("Stored %d contact(s) with %d field(s) in %s", contacts, fields, path))
		return nil

	default:
		if cfg.Output == "" {
			return export.Write(cmd.OutOrStdout(), cfg.Format, rs)
		}
		if err := export.WriteFile(cfg.Output, cfg.Format, rs); err != nil {
			return err
		}
		msg.Message("Exported to " + cfg.Output)
		return nil
	}
}

func exportConfig(cmd *cobra.Command) (types.ExportConfig, error) {
	formatName, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return types.ExportConfig{}, err
	}
	return types.ExportConfig{
		PipelineConfig: pipelineConfig(),
		Format:         format,
		Output:         output,
	}, nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml, json, or sqlite")
	exportCmd.Flags().StringP("output", "o", "", "output path (default: stdout, or <workdir>/contacts.db for sqlite)")

	rootCmd.AddCommand(exportCmd)
}
