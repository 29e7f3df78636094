package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"wavegate/cmd/wavegate/cmd/health"
	"wavegate/cmd/wavegate/cmd/serve"
	"wavegate/cmd/wavegate/cmd/transcribe"
	"wavegate/cmd/wavegate/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wavegate",
	Short: "Gateway and upload client for a WAV transcription service",
	Long: `wavegate fronts a remote WAV transcription API.

- serve runs the reverse proxy: it serves the static page, forwards API
  calls to the transcription backend, and answers CORS pre-flights
- transcribe uploads a WAV file and prints the transcription result
- health checks whether the service is reachable`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(transcribe.Cmd)
	rootCmd.AddCommand(health.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
