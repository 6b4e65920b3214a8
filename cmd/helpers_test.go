package cmd

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/trainerhub/poketrainer/testutil"
)

// resetFlags restores every flag to its default so runs do not leak state
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command against backend with a private data dir
func run(t *testing.T, fb *testutil.FakeBackend, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	full := append([]string{"--api-url", fb.URL(), "--data-dir", dir}, args...)
	rootCmd.SetArgs(full)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()
	return stdout.String(), err
}

// loginAs stores a session for Ash (or an admin) through the login command
func loginAs(t *testing.T, fb *testutil.FakeBackend, dir string, admin bool) {
	t.Helper()
	role := 0
	if admin {
		role = 1
	}
	fb.JSON(http.MethodPost, "/user/login", http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   "tok-ash",
		"user":    map[string]interface{}{"_id": "u1", "name": "Ash", "email": "ash@example.com", "role": role},
	})
	if _, err := run(t, fb, dir, "", "login", "--email", "ash@example.com", "--password", "pikachu"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

// countRequests returns how many requests the backend saw for method and path
func countRequests(fb *testutil.FakeBackend, method, path string) int {
	n := 0
	for _, r := range fb.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func allowUser(fb *testutil.FakeBackend) {
	fb.JSON(http.MethodGet, "/auth/user-auth", http.StatusOK, map[string]bool{"ok": true})
}
