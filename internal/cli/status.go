package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/officedhq/officed/internal/config"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether a local gateway is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}

			url := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Gateway.Port)
			client := &http.Client{Timeout: 3 * time.Second}
			resp, err := client.Get(url)
			if err != nil {
				fmt.Printf("gateway: not running (%v)\n", err)
				return nil
			}
			defer resp.Body.Close()

			var health struct {
				OK      bool   `json:"ok"`
				Version string `json:"version"`
				Uptime  string `json:"uptime"`
				Offline bool   `json:"offline"`
				Clients int    `json:"clients"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
				return fmt.Errorf("decoding health response: %w", err)
			}

			fmt.Printf("gateway: running (v%s, up %s)\n", health.Version, health.Uptime)
			if health.Offline {
				fmt.Println("mode:    offline (no backend credentials)")
			}
			fmt.Printf("clients: %d\n", health.Clients)
			return nil
		},
	}
}
