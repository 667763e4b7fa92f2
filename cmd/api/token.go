package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/sitecrew-go/internal/config"
	"github.com/cmlabs-hris/sitecrew-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a field device",
	Long: `Issue a bearer token signed with JWT_SECRET_KEY.

Set the printed token as AUTH_TOKEN on the device running the agent.

Example:
  api token --device site-tablet-07 --ttl 720h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID, _ := cmd.Flags().GetString("device")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.JWT.Secret == "" {
			return errors.New("JWT_SECRET_KEY is not set")
		}

		token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret).IssueDeviceToken(deviceID, ttl)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("device", "", "Device identifier stored as the token subject")
	tokenCmd.Flags().Duration("ttl", jwt.DefaultDeviceTTL, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("device")

	rootCmd.AddCommand(tokenCmd)
}
