package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
	"github.com/trainerhub/poketrainer/internal/guard"
	"github.com/trainerhub/poketrainer/internal/realtime"
	"golang.org/x/sync/errgroup"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// probeResults collects the outcome of the concurrent network checks
type probeResults struct {
	backend  error
	realtime error
	user     guard.Result
	admin    guard.Result
}

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, backend reachability and session state",
	Long: `Check the health of the client by verifying:
  • Configuration and data directory
  • Stored session and token expiry
  • Backend API reachability
  • Realtime chat endpoint reachability
  • User and admin guard results

Use --verbose to print resolved paths and URLs.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("🔍 Poketrainer Health Check"))
		fmt.Fprintln(out)

		// Step 1: configuration
		fmt.Fprintln(out, infoStyle.Render("Step 1: Resolving configuration..."))
		fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if verbose {
			fmt.Fprintf(out, "   API:       %s\n", a.cfg.APIURL)
			fmt.Fprintf(out, "   Realtime:  %s\n", a.cfg.RealtimeURL())
			fmt.Fprintf(out, "   Data dir:  %s\n", a.paths.BaseDir)
			fmt.Fprintf(out, "   Timeout:   %s\n", a.cfg.Timeout)
		}
		fmt.Fprintln(out)

		// Step 2: local session
		fmt.Fprintln(out, infoStyle.Render("Step 2: Checking stored session..."))
		session, err := a.sessions.Current()
		if err != nil {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Not logged in"))
		} else {
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Session for %s", session.DisplayName())))
		}
		if verbose {
			if keys, err := a.state.Keys(); err == nil {
				fmt.Fprintf(out, "   State keys: %d\n", len(keys))
			}
			fmt.Fprintf(out, "   Cookie consent: %s\n", valueOr(a.images.Consent(), "not set"))
		}
		fmt.Fprintln(out)

		// Step 3: network checks run concurrently
		fmt.Fprintln(out, infoStyle.Render("Step 3: Probing backend..."))
		results := runProbes(cmd.Context(), a, session)

		if results.backend != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Backend unreachable:"), results.backend)
		} else {
			fmt.Fprintln(out, successStyle.Render("✅ Backend reachable"))
		}
		if results.realtime != nil {
			fmt.Fprintln(out, warningStyle.Render("⚠️  Realtime endpoint unreachable:"), results.realtime)
		} else {
			fmt.Fprintln(out, successStyle.Render("✅ Realtime endpoint reachable"))
		}
		fmt.Fprintf(out, "   User guard:  %s\n", renderOutcome(results.user.Outcome))
		fmt.Fprintf(out, "   Admin guard: %s\n", renderOutcome(results.admin.Outcome))
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)
		return summarize(out, results)
	}),
}

// runProbes checks reachability and both guards in parallel. Each probe
// records its own outcome so one failure never cuts the others short.
func runProbes(ctx context.Context, a *app, session *internal.Session) probeResults {
	var r probeResults
	var g errgroup.Group

	g.Go(func() error {
		r.backend = a.client.Ping(ctx)
		return nil
	})
	g.Go(func() error {
		r.realtime = probeRealtime(ctx, a, session)
		return nil
	})
	g.Go(func() error {
		r.user = a.guard.RequireUser(ctx)
		return nil
	})
	g.Go(func() error {
		r.admin = a.guard.RequireAdmin(ctx)
		return nil
	})

	_ = g.Wait() // probes report through r, never through the group
	return r
}

// probeRealtime opens and immediately closes a websocket to the chat endpoint
func probeRealtime(ctx context.Context, a *app, session *internal.Session) error {
	endpoint, err := realtime.SocketURL(a.cfg.RealtimeURL())
	if err != nil {
		return err
	}
	header := http.Header{}
	if session != nil {
		header.Set("Authorization", "Bearer "+session.Token)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	start := time.Now()
	conn, err := realtime.WebsocketDialer{HandshakeTimeout: a.cfg.Timeout}.Dial(ctx, endpoint, header)
	if err != nil {
		return err
	}
	internal.LogDebug("Realtime handshake took %s", time.Since(start).Round(time.Millisecond))
	return conn.Close()
}

func summarize(out io.Writer, r probeResults) error {
	switch {
	case r.backend != nil:
		fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
		fmt.Fprintln(out, "   • The backend API cannot be reached")
		return fmt.Errorf("health check failed: backend unreachable")
	case r.user.Outcome == guard.Authorized:
		fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
		fmt.Fprintln(out, successStyle.Render("   • Backend: reachable"))
		fmt.Fprintln(out, successStyle.Render("   • Session: accepted"))
		return nil
	default:
		fmt.Fprintln(out, warningStyle.Render("⚠️  Backend reachable but the session is not accepted"))
		fmt.Fprintln(out, "   • Run 'poketrainer login' to start a session")
		return nil
	}
}

func renderOutcome(o guard.Outcome) string {
	switch o {
	case guard.Authorized:
		return successStyle.Render(o.String())
	case guard.NetworkError:
		return errorStyle.Render(o.String())
	default:
		return warningStyle.Render(o.String())
	}
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
