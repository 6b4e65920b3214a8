package cmd

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/trainerhub/poketrainer/internal/guard"
	"github.com/trainerhub/poketrainer/testutil"
)

func TestHealthcheckCommandExists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "healthcheck" {
			found = true
			break
		}
	}

	if !found {
		t.Error("healthcheck command not found in root command")
	}
}

func TestHealthcheck_NotLoggedIn(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	out, err := run(t, fb, t.TempDir(), "", "healthcheck")
	if err != nil {
		t.Fatalf("healthcheck error = %v", err)
	}
	for _, want := range []string{"Not logged in", "Backend reachable", "session is not accepted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestHealthcheck_Authorized(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	dir := t.TempDir()
	loginAs(t, fb, dir, false)
	allowUser(fb)
	fb.JSON(http.MethodGet, "/auth/admin-auth", http.StatusForbidden, map[string]string{"message": "admins only"})

	out, err := run(t, fb, dir, "", "--verbose", "healthcheck")
	if err != nil {
		t.Fatalf("healthcheck error = %v", err)
	}
	for _, want := range []string{"Session for Ash", "Health check passed", "forbidden", fb.URL()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestHealthcheck_BackendDown(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	url := fb.URL()
	fb.Server.Close()

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--api-url", url, "--data-dir", t.TempDir(), "--timeout", "2s", "healthcheck"})
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})

	start := time.Now()
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "backend unreachable") {
		t.Errorf("error = %v, want backend unreachable", err)
	}
	if !strings.Contains(stdout.String(), "Backend unreachable") {
		t.Errorf("output = %q", stdout.String())
	}
	if time.Since(start) > 10*time.Second {
		t.Error("healthcheck took too long against a closed port")
	}
}

func TestHealthcheck_BackendDownRealtimeUp(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	url := fb.URL()
	fb.Server.Close()
	cs := newChatServer(t)

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--api-url", url, "--socket-url", cs.URL(), "--data-dir", t.TempDir(), "--timeout", "2s", "healthcheck"})
	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "backend unreachable") {
		t.Errorf("error = %v, want backend unreachable", err)
	}
	for _, want := range []string{"Backend unreachable", "Realtime endpoint reachable"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("output missing %q: %q", want, stdout.String())
		}
	}
	if cs.connections() != 1 {
		t.Errorf("realtime connections = %d, want 1", cs.connections())
	}
}

func TestRenderOutcome(t *testing.T) {
	for _, o := range []guard.Outcome{guard.Authorized, guard.Unauthenticated, guard.Forbidden, guard.NetworkError} {
		if got := renderOutcome(o); !strings.Contains(got, o.String()) {
			t.Errorf("renderOutcome(%v) = %q", o, got)
		}
	}
}
