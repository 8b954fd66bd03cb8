package cli

import (
	"errors"
	"fmt"
	"time"

	"stillreel/models"
	"stillreel/utils"

	"github.com/spf13/cobra"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var subject string
	var scopes []string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token signed with the configured JWT secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.config()
			if err != nil {
				return err
			}
			if !cfg.AdminEnabled() {
				return errors.New("no JWT secret configured (set jwt_secret or STILLREEL_JWT_SECRET)")
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}

			now := time.Now()
			token, err := utils.CreateAdminJWT(&models.AdminJWT{
				Issuer:    "stillreel",
				Subject:   subject,
				IssuedAt:  now.Unix(),
				ExpiresAt: now.Add(ttl).Unix(),
				Scopes:    scopes,
			}, []byte(cfg.JWTSecret))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "Token subject")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "Granted scope (runs, credentials, export); repeatable, empty grants all")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
