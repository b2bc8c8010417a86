package cli

import (
	"fmt"

	"lettercraft/internal/server"

	"github.com/spf13/cobra"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	Long: `Sign a bearer token for --user with server.jwt.secret. The API records
usage under the token's user. Send it as "Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if cfg.Server.JWT.Secret == "" {
			return fmt.Errorf("server.jwt.secret is not configured")
		}

		token, err := server.NewTokenService(cfg.Server.JWT).GenerateToken(tokenUser)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
		return err
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "User id placed in the token subject")
	_ = tokenCmd.MarkFlagRequired("user")
}
