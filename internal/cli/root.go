package cli

import (
	"github.com/spf13/cobra"

	configcmd "github.com/coral-mesh/qrscan/internal/cli/config"
	"github.com/coral-mesh/qrscan/internal/cli/helpers"
	"github.com/coral-mesh/qrscan/internal/cli/scan"
	"github.com/coral-mesh/qrscan/internal/cli/serve"
	"github.com/coral-mesh/qrscan/pkg/version"
)

// NewRootCmd creates the qrscan command tree.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "qrscan",
		Short: "QR code scanner with content-aware actions",
		Long: `Scan frames from a camera source, decode QR codes, and act on what they
contain.

Detections are classified as links, WiFi credentials, email addresses,
SMS messages, phone numbers, contact cards, geo locations or plain text,
each with the actions that fit it.

Run it in the terminal (qrscan scan), as an interactive UI (qrscan scan --tui),
or as a service with a websocket event stream (qrscan serve).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	helpers.AddConfigFlag(rootCmd, &configPath)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(scan.NewScanCmd())
	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newClassifyCmd())
	rootCmd.AddCommand(configcmd.NewConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("qrscan version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
