package health

import (
	"fmt"

	"github.com/spf13/cobra"
	"wavegate/internal/config"
	"wavegate/internal/upload"
)

var apiURL string

func init() {
	Cmd.Flags().StringVarP(&apiURL, "api-url", "u", "",
		"base URL of the transcription API (default from WAVEGATE_API_URL)")
}

// Cmd represents the health command
var Cmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the transcription service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetClientConfig()
		if apiURL != "" {
			cfg.BaseURL = apiURL
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		client := upload.NewClient(cfg.BaseURL)
		if err := client.HealthCheck(cmd.Context()); err != nil {
			return err
		}

		fmt.Printf("transcription service reachable at %s\n", cfg.BaseURL)
		return nil
	},
}
