package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/opsease/backend/internal/infrastructure/auth"
	"github.com/opsease/backend/internal/infrastructure/cache"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint or revoke API access tokens",
	}
	cmd.AddCommand(newTokenGenerateCmd(a), newTokenRevokeCmd(a))
	return cmd
}

func newTokenGenerateCmd(a *app) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "generate <user-id>",
		Short: "Sign an access token for a user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.App.Env == "production" {
				return errors.New("refusing to mint tokens against a production configuration")
			}
			token, claims, err := auth.NewJWTService(a.cfg.JWT).GenerateAccessToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "jti=%s expires=%s\n",
				claims.ID, claims.GetExpiresAtTime().UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: jwt.access_token_expiration)")
	return cmd
}

func newTokenRevokeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Blacklist a token until it expires",
		Long: "revoke records the token's id in the Redis blacklist the API consults.\n" +
			"It needs redis.enabled, since an in-process blacklist would not reach the server.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Redis.Enabled {
				return errors.New("token revocation needs redis.enabled")
			}

			claims, err := auth.NewJWTService(a.cfg.JWT).ValidateAccessToken(args[0])
			if err != nil {
				return fmt.Errorf("cannot revoke token: %w", err)
			}
			ttl := time.Until(claims.GetExpiresAtTime())
			if ttl <= 0 || claims.ID == "" {
				return errors.New("token has no id or has already expired")
			}

			client, err := cache.NewRedisClient(cmd.Context(), a.cfg.Redis)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := auth.NewRedisTokenBlacklist(client).Revoke(cmd.Context(), claims.ID, ttl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s for user %s until %s\n",
				claims.ID, claims.UserID, claims.GetExpiresAtTime().UTC().Format(time.RFC3339))
			return nil
		},
	}
}
