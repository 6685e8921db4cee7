package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chernandez90/InsurancePortal/internal/domain"
	"github.com/chernandez90/InsurancePortal/pkg/jwt"
)

func newTokenCmd(opts *options) *cobra.Command {
	var (
		userID   string
		username string
		email    string
		roles    []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		Long: `token signs an access token with the configured jwt.secret, so it is
accepted by a server running with the same configuration. The user does
not need to exist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.JWT.Secret == "" {
				return errors.New("jwt.secret must be set to issue tokens a server will accept")
			}

			tokens, err := jwt.NewManager(cfg.JWT)
			if err != nil {
				return err
			}
			if username == "" {
				username = userID
			}
			pair, err := tokens.GenerateTokenPair(userID, email, username, roles)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), pair.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "subject of the token")
	cmd.Flags().StringVar(&username, "username", "", "username claim (defaults to user id)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringSliceVar(&roles, "role", []string{domain.RoleUser}, "role claim, repeatable")
	cmd.MarkFlagRequired("user-id")
	return cmd
}
