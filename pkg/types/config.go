// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PipelineConfig holds the settings shared by every subcommand.
type PipelineConfig struct {
	// Workdir is the default directory for output files when no explicit
	// output path is given (default ".").
	Workdir string `json:"workdir" yaml:"workdir"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// ShowProgress renders progress bars on stderr.
	ShowProgress bool `json:"show_progress" yaml:"show_progress"`
}

// ConvertConfig holds settings for the convert stage.
type ConvertConfig struct {
	PipelineConfig `yaml:",inline"`

	// Output is the destination vCard path. Empty selects the default
	// contacts_<unix-ms>.vcf name inside Workdir.
	Output string `json:"output" yaml:"output"`

	// SwapNames exchanges first and last names before writing.
	SwapNames bool `json:"swap_names" yaml:"swap_names"`

	// Print writes the generated text to stdout instead of a file.
	Print bool `json:"print" yaml:"print"`
}

// ExportFormat selects the record export encoding.
type ExportFormat string

const (
	ExportYAML   ExportFormat = "yaml"
	ExportJSON   ExportFormat = "json"
	ExportSQLite ExportFormat = "sqlite"
)

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	PipelineConfig `yaml:",inline"`

	// Format is the export encoding: yaml, json, or sqlite.
	Format ExportFormat `json:"format" yaml:"format"`

	// Output is the destination path. Empty writes YAML/JSON to stdout and
	// SQLite to contacts.db inside Workdir.
	Output string `json:"output" yaml:"output"`
}
