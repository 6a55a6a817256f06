// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scopegate",
	Short: "ScopeGate is a scope-based authentication portal",
	Long: `ScopeGate is a web authentication portal that keeps independently
authenticated scopes (users, admins) in a single session, with local,
LDAP and OpenID Connect credential providers.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
