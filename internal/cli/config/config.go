// Package config implements the 'qrscan config' command family.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/qrscan/internal/cli/helpers"
	"github.com/coral-mesh/qrscan/internal/config"
	"github.com/coral-mesh/qrscan/internal/constants"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage qrscan configuration",
		Long: `Manage qrscan configuration.

Configuration Priority:
  1. Command-line flags (highest)
  2. QRSCAN_* environment variables
  3. Config file (--config, or ~/.qrscan/config.yaml)
  4. Built-in defaults

Environment Variables:
  QRSCAN_CONFIG  Override the directory holding .qrscan/ (default: home)`,
	}

	cmd.AddCommand(newPathCmd())
	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}

// configPath returns the --config flag or the default location.
func configPath(cmd *cobra.Command) (string, bool) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, true
	}
	return config.NewLoader().Path(), false
}

// newPathCmd creates the 'config path' command.
func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := configPath(cmd)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

// newViewCmd creates the 'config view' command.
func newViewCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Long: `Display the configuration after defaults, the config file and environment
variables are merged.

Use --raw to output the YAML without the header comments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, explicit := configPath(cmd)
			loadPath := ""
			if explicit {
				loadPath = path
			}

			cfg, err := config.NewLoader().Load(loadPath)
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			out := cmd.OutOrStdout()
			if !raw {
				fmt.Fprintf(out, "# Config file: %s (%s)\n", path, fileStatus(path))
				fmt.Fprintf(out, "# Environment overrides: %s*\n", constants.EnvPrefix)
				fmt.Fprintln(out)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Output raw YAML without annotations")
	return cmd
}

func fileStatus(path string) string {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "not found, using defaults"
		}
		return err.Error()
	}
	return "loaded"
}

// newValidateCmd creates the 'config validate' command.
func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Load and validate the configuration, reporting every problem found.

Checks:
- Camera kind and its required path or URL
- Positive intervals and timeouts
- Clear mode (level or edge)
- Dispatch filter compiles as a CEL expression
- Server listen address`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, []helpers.OutputFormat{helpers.FormatTable, helpers.FormatJSON}); err != nil {
				return err
			}

			path, explicit := configPath(cmd)
			loadPath := ""
			if explicit {
				loadPath = path
			}

			result := validationResult{Path: path, Valid: true}
			if _, err := config.NewLoader().Load(loadPath); err != nil {
				result.Valid = false
				result.Errors = validationMessages(err)
			}

			out := cmd.OutOrStdout()
			if format == string(helpers.FormatJSON) {
				if err := helpers.WriteJSON(out, result); err != nil {
					return err
				}
			} else {
				if result.Valid {
					fmt.Fprintf(out, "✓ %s is valid\n", path)
				} else {
					fmt.Fprintf(out, "✗ %s is invalid:\n", path)
					for _, msg := range result.Errors {
						fmt.Fprintf(out, "  - %s\n", msg)
					}
				}
			}

			if !result.Valid {
				return fmt.Errorf("configuration has %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, []helpers.OutputFormat{
		helpers.FormatTable,
		helpers.FormatJSON,
	})

	return cmd
}

type validationResult struct {
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// validationMessages flattens a load error into one message per problem.
func validationMessages(err error) []string {
	var multi *config.MultiValidationError
	if errors.As(err, &multi) {
		msgs := make([]string, len(multi.Errors))
		for i, e := range multi.Errors {
			msgs[i] = e.Error()
		}
		return msgs
	}
	return []string{err.Error()}
}

// newInitCmd creates the 'config init' command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Write the built-in defaults to the config file so they can be edited.

Example:
  qrscan config init
  qrscan config init --config ./qrscan.yaml --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := configPath(cmd)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.NewLoader().Save(path, config.Default()); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote default configuration to %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
