package serve

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"wavegate/internal/config"
	"wavegate/internal/gateway"
)

var configFile string

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", "",
		"optional YAML config file overlaying environment configuration")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription gateway",
	Long: `Run the reverse proxy that serves the static page and forwards API
calls under the configured prefix to the transcription backend, with CORS
headers, pre-flight handling, a request body cap for large WAV uploads, and a
generous upstream timeout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetGatewayConfig()

		if configFile != "" {
			var err error
			cfg, err = config.LoadGatewayConfigFile(cfg, configFile)
			if err != nil {
				return err
			}
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		server := gateway.NewServer(cfg, logger)
		if err := server.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return server.Shutdown(ctx)
	},
}
