package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bher20/eratecharge/internal/auth"
)

var (
	tokenName string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an API token and its config entry",
	Long: `Generate a random API token. The token is printed once; only its SHA-256
digest goes into the config file under auth.tokens.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !auth.ValidRole(tokenRole) {
			return fmt.Errorf("unknown role %q (%s)", tokenRole, strings.Join(auth.Roles, ", "))
		}
		raw, digest := auth.GenerateToken()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "token: %s\n\n", raw)
		fmt.Fprintln(out, "auth:")
		fmt.Fprintln(out, "  tokens:")
		fmt.Fprintf(out, "    - name: %s\n", tokenName)
		fmt.Fprintf(out, "      role: %s\n", tokenRole)
		fmt.Fprintf(out, "      sha256: %s\n", digest)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenName, "name", "default", "token name")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "biller", "token role (admin, biller, auditor)")
	rootCmd.AddCommand(tokenCmd)
}
