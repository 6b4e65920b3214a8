package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
)

var (
	updateName  string
	updateEmail string
	updatePhone string
	updateRole  int
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage trainer accounts (admin only)",
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every account",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.guard.RequireAdmin(cmd.Context()).Error(); err != nil {
			return err
		}

		users, err := internal.Fetch(cmd.Context(), "Loading users", a.client.Users)
		if err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(users) == 0 {
			fmt.Fprintln(out, headerStyle.Render("No users"))
			return nil
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d user(s)", len(users))))
		fmt.Fprintln(out)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Email")+"\t"+titleStyle.Render("Role")+"\t")
		for _, u := range users {
			role := "trainer"
			if u.IsAdmin() {
				role = priceStyle.Render("admin")
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", idStyle.Render(u.ID), u.Name, dimStyle.Render(u.Email), role)
		}
		return w.Flush()
	}),
}

var adminUpdateUserCmd = &cobra.Command{
	Use:   "update-user <user-id>",
	Short: "Change an account's name, email, phone or role",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		update := internal.UserUpdate{
			Name:  updateName,
			Email: updateEmail,
			Phone: updatePhone,
		}
		if cmd.Flags().Changed("role") {
			role := updateRole
			update.Role = &role
		}
		if update == (internal.UserUpdate{}) {
			return fmt.Errorf("nothing to update: set at least one of --name, --email, --phone, --role")
		}
		if err := a.guard.RequireAdmin(cmd.Context()).Error(); err != nil {
			return err
		}

		err := internal.ShowProgress(cmd.Context(), "Updating user", func(ctx context.Context) error {
			return a.client.UpdateUser(ctx, args[0], update)
		})
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Updated user "+args[0])
		return nil
	}),
}

var adminDeleteUserCmd = &cobra.Command{
	Use:   "delete-user <user-id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		result := a.guard.RequireAdmin(cmd.Context())
		if err := result.Error(); err != nil {
			return err
		}
		if result.Session.UserID() == args[0] {
			return fmt.Errorf("refusing to delete your own account")
		}

		err := internal.ShowProgress(cmd.Context(), "Deleting user", func(ctx context.Context) error {
			return a.client.DeleteUser(ctx, args[0])
		})
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Deleted user "+args[0])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminUsersCmd, adminUpdateUserCmd, adminDeleteUserCmd)

	adminUpdateUserCmd.Flags().StringVar(&updateName, "name", "", "New display name")
	adminUpdateUserCmd.Flags().StringVar(&updateEmail, "email", "", "New email")
	adminUpdateUserCmd.Flags().StringVar(&updatePhone, "phone", "", "New phone number")
	adminUpdateUserCmd.Flags().IntVar(&updateRole, "role", 0, "New role: 0 trainer, 1 admin")
}
