// Package cli implements contexta-cli, the operator tool for the
// notifications backend.
package cli

import (
	"errors"
	"strings"

	"contexta/internal/cli/output"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errMalformedCursor = errors.New("malformed cursor")

// NewRootCommand builds the command tree. Flags can also be set through
// CONTEXTA_CLI_* environment variables.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CONTEXTA_CLI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "contexta-cli",
		Short: "Contexta notifications operator CLI",
		Long: `contexta-cli inspects and builds pagination cursors and prints the
effective server configuration.

Example usage:
  contexta-cli cursor encode --created-at 2024-01-15T10:30:00Z --id note-42
  contexta-cli cursor decode 2024-01-15T10:30:00.000Z:note-42
  contexta-cli config --output table`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("output", "o", string(output.FormatPlain), "output format: plain, table, or json")
	root.PersistentFlags().String("color", "auto", "color mode: auto, always, or never")
	_ = v.BindPFlag("output", root.PersistentFlags().Lookup("output"))
	_ = v.BindPFlag("color", root.PersistentFlags().Lookup("color"))

	root.AddCommand(newCursorCommand(v), newConfigCommand(v))
	return root
}

// Execute runs the CLI and reports a failure on stderr. It returns the exit
// code.
func Execute(args []string) int {
	root := NewRootCommand()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		useColors, _ := output.ResolveColors("auto")
		output.NewPrinter(root.OutOrStdout(), root.ErrOrStderr(), output.FormatPlain, useColors).Error("%v", err)
		return 1
	}
	return 0
}

func newPrinter(cmd *cobra.Command, v *viper.Viper) (*output.Printer, error) {
	format, err := output.ParseFormat(v.GetString("output"))
	if err != nil {
		return nil, err
	}
	useColors, err := output.ResolveColors(v.GetString("color"))
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), format, useColors), nil
}
