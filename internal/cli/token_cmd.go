package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/expensecmd/internal/auth"
	"github.com/mmynk/expensecmd/internal/models"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		tz     string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development token for a user",
		Long:  "Sign a token with JWT_SECRET (or --secret) that the server accepts as the acting user.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("a signing secret is required: pass --secret or set JWT_SECRET")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(&models.User{
				ID:       userID,
				Email:    email,
				TimeZone: tz,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "User ID to embed (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email to embed")
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone for default expense dates, e.g. Europe/Rome")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
