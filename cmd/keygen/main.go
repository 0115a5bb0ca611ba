package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavshah/duty-scheduler-go/internal/config"
	"github.com/arnavshah/duty-scheduler-go/pkg/auth"
)

func main() {
	var cfgPath string
	cmd := &cobra.Command{
		Use:          "keygen <userID>",
		Short:        "Generate an HMAC-signed API key offline",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cfg.Auth.APIMasterSecret == "" {
				return errors.New("API_MASTER_SECRET is not configured")
			}
			key := auth.New(cfg.Auth).GenerateHMACKey(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Generated Key for %s:\n%s\n", args[0], key)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
