package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
)

var (
	loginEmail    string
	loginPassword string

	registerName    string
	registerPhone   string
	registerAddress string
	registerAnswer  string

	resetAnswer      string
	resetNewPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long: `Log in with email and password. The session is stored locally and used by
every other command until 'poketrainer logout'.

The password is read from standard input when --password is not given.`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email, err := promptIfEmpty(cmd, in, loginEmail, "Email")
		if err != nil {
			return err
		}
		password, err := promptIfEmpty(cmd, in, loginPassword, "Password")
		if err != nil {
			return err
		}

		resp, err := internal.Fetch(cmd.Context(), "Logging in", func(ctx context.Context) (*internal.AuthResponse, error) {
			return a.client.Login(ctx, email, password)
		})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		if err := a.sessions.Save(&internal.Session{User: resp.User, Token: resp.Token}); err != nil {
			return err
		}
		// a different account must not see the previous one's image
		a.dropProfileImage()

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Logged in as %s", resp.User.Name))
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a trainer account",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		reg := internal.Registration{
			Name:    registerName,
			Email:   loginEmail,
			Phone:   registerPhone,
			Address: registerAddress,
			Answer:  registerAnswer,
		}
		var err error
		if reg.Password, err = promptIfEmpty(cmd, bufio.NewReader(cmd.InOrStdin()), loginPassword, "Password"); err != nil {
			return err
		}
		if err := validateRequired(map[string]string{
			"--name":   reg.Name,
			"--email":  reg.Email,
			"--answer": reg.Answer,
		}); err != nil {
			return err
		}

		resp, err := internal.Fetch(cmd.Context(), "Registering", func(ctx context.Context) (*internal.AuthResponse, error) {
			return a.client.Register(ctx, reg)
		})
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if !resp.Success && resp.Message != "" {
			return fmt.Errorf("registration failed: %s", resp.Message)
		}

		internal.PrintSuccess(cmd.OutOrStdout(), "Registered successfully, you can now log in")
		return nil
	}),
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Reset the password with the security answer",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := validateRequired(map[string]string{
			"--email":        loginEmail,
			"--answer":       resetAnswer,
			"--new-password": resetNewPassword,
		}); err != nil {
			return err
		}

		err := internal.ShowProgress(cmd.Context(), "Resetting password", func(ctx context.Context) error {
			return a.client.ForgotPassword(ctx, internal.PasswordReset{
				Email:       loginEmail,
				Answer:      resetAnswer,
				NewPassword: resetNewPassword,
			})
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), "Password reset, log in with the new password")
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if err := a.sessions.Clear(); err != nil {
			return err
		}
		a.dropProfileImage()
		internal.PrintSuccess(cmd.OutOrStdout(), "Logged out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in trainer",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		session, err := a.sessions.Current()
		if errors.Is(err, internal.ErrLoginRequired) {
			internal.PrintWarning(cmd.OutOrStdout(), "Not logged in")
			return nil
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		role := "trainer"
		if session.User.IsAdmin() {
			role = "admin"
		}
		fmt.Fprintln(out, titleStyle.Render(session.DisplayName())+" "+idStyle.Render(session.UserID()))
		fmt.Fprintf(out, "  Email: %s\n", session.User.Email)
		fmt.Fprintf(out, "  Role:  %s\n", role)
		return nil
	}),
}

// promptIfEmpty returns value, or reads one line from in when it is empty
func promptIfEmpty(cmd *cobra.Command, in *bufio.Reader, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return line, nil
}

// validateRequired reports the first empty flag, in flag name order
func validateRequired(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, forgotPasswordCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd, forgotPasswordCmd} {
		c.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	}
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when empty)")
	}

	registerCmd.Flags().StringVar(&registerName, "name", "", "Trainer name")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "Phone number")
	registerCmd.Flags().StringVar(&registerAddress, "address", "", "Postal address")
	registerCmd.Flags().StringVar(&registerAnswer, "answer", "", "Security answer used to reset the password")

	forgotPasswordCmd.Flags().StringVar(&resetAnswer, "answer", "", "Security answer given at registration")
	forgotPasswordCmd.Flags().StringVar(&resetNewPassword, "new-password", "", "New password")
}
