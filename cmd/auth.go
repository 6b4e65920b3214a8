package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal/guard"
)

var authAdmin bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect access rights",
}

var authCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Ask the backend whether the stored session is accepted",
	Long: `Run the user guard, or with --admin the admin guard, against the backend
and print the outcome: authorized, unauthenticated, forbidden or network error.

The command exits non-zero unless the outcome is authorized.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var result guard.Result
		if authAdmin {
			result = a.guard.RequireAdmin(cmd.Context())
		} else {
			result = a.guard.RequireUser(cmd.Context())
		}

		style := successStyle
		switch result.Outcome {
		case guard.Unauthenticated, guard.Forbidden:
			style = warningStyle
		case guard.NetworkError:
			style = errorStyle
		}
		fmt.Fprintln(cmd.OutOrStdout(), style.Render(result.Outcome.String()))
		return result.Error()
	}),
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authCheckCmd)
	authCheckCmd.Flags().BoolVar(&authAdmin, "admin", false, "Check admin rights instead of a plain session")
}
