package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/trainerhub/poketrainer/internal"
	"github.com/trainerhub/poketrainer/internal/export"
	"github.com/trainerhub/poketrainer/internal/realtime"
)

const defaultChatWidth = 80

var (
	chatExportDir string
	chatFormat    string
	chatWidth     int
)

var (
	// Styles for the chat view
	chatHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1).
			MarginBottom(1)

	ownMessageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	senderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	presenceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	selfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	loginRequiredStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("214")).
				Padding(1, 4)
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Join the realtime trainer chat",
	Long: `Join the realtime trainer chat.

Type a message and press Enter to send it. End a line with \ to continue the
message on the next line. Your own messages appear once the server echoes them.

Commands:
  /who    show who is online
  /help   show this help
  /quit   leave the chat (Ctrl-D and Ctrl-C work too)

With --export the transcript of the session is written on exit.`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		var exporter export.Exporter
		if chatExportDir != "" {
			var err error
			if exporter, err = export.NewExporter(chatFormat); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		view := newChatView(cmd.OutOrStdout(), terminalWidth())
		chat := realtime.NewChat(a.sessions, realtime.ChatOptions{
			URL:        a.cfg.RealtimeURL(),
			Dialer:     realtime.WebsocketDialer{HandshakeTimeout: a.cfg.Timeout},
			OnMessage:  view.message,
			OnPresence: view.presence,
			OnState:    view.state,
		})

		if err := chat.Mount(); err != nil {
			if errors.Is(err, internal.ErrLoginRequired) {
				view.loginRequired()
				return nil
			}
			chat.Unmount()
			return err
		}

		session := chat.Session()
		view.header(session.DisplayName())
		loopErr := runChat(ctx, cmd.InOrStdin(), chat, view)

		transcript := chat.Unmount()
		if exporter != nil && transcript != nil {
			path, err := export.WriteFile(exporter, transcript, chatExportDir)
			if err != nil {
				return err
			}
			internal.PrintSuccess(cmd.ErrOrStderr(), "Transcript saved to "+path)
		}
		return loopErr
	}),
}

// runChat feeds stdin lines to the composer until EOF, /quit, ctx
// cancellation or the connection giving up
func runChat(ctx context.Context, in io.Reader, chat *realtime.Chat, view *chatView) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-view.down:
			return fmt.Errorf("chat connection lost")
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleChatLine(line, chat, view); quit {
				return nil
			}
		}
	}
}

// handleChatLine runs a slash command or feeds line to the composer. Commands
// are recognised unless a backslash-continued message is open. It reports
// whether the user asked to leave.
func handleChatLine(line string, chat *realtime.Chat, view *chatView) bool {
	composer := chat.Composer()
	if !composer.Continuing() {
		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return true
		case "/who":
			view.presence(chat.Presence().Entries())
			return false
		case "/help":
			view.help()
			return false
		}
	}

	_, _, err := composer.Feed(line)
	switch {
	case err == nil, errors.Is(err, internal.ErrEmptyMessage):
	case errors.Is(err, internal.ErrNotConnected):
		view.warn("Not connected, message kept. Press Enter to retry or type more to add a line.")
	default:
		view.warn(fmt.Sprintf("Failed to send: %v", err))
	}
	return false
}

// chatView serializes output from the socket reader and the input loop
type chatView struct {
	mu    sync.Mutex
	out   io.Writer
	width int

	down     chan struct{}
	downOnce sync.Once
}

func newChatView(out io.Writer, width int) *chatView {
	return &chatView{out: out, width: width, down: make(chan struct{})}
}

func (v *chatView) println(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, s)
}

func (v *chatView) header(name string) {
	v.println(chatHeaderStyle.Render(fmt.Sprintf("💬 Trainer chat as %s", name)) + "\n" +
		presenceStyle.Render("Type /help for commands"))
}

func (v *chatView) message(msg internal.ChatMessage, own bool) {
	v.println(renderChatMessage(msg, own, v.width))
}

func (v *chatView) presence(entries []realtime.PresenceEntry) {
	v.println(renderPresence(entries))
}

func (v *chatView) state(s realtime.State) {
	switch s {
	case realtime.StateConnected:
		v.println(presenceStyle.Render("● connected"))
	case realtime.StateReconnecting:
		v.println(presenceStyle.Render("○ reconnecting..."))
	case realtime.StateDown:
		v.println(errorStyle.Render("✗ connection lost"))
		v.downOnce.Do(func() { close(v.down) })
	}
}

func (v *chatView) warn(message string) {
	v.println(warningStyle.Render("⚠ " + message))
}

func (v *chatView) help() {
	v.println(strings.Join([]string{
		"/who    show who is online",
		"/help   show this help",
		"/quit   leave the chat",
		`end a line with \ to continue the message`,
	}, "\n"))
}

func (v *chatView) loginRequired() {
	v.println(loginRequiredStyle.Render("Login Required\n\nRun 'poketrainer login' to join the chat."))
}

// renderChatMessage right-aligns own messages; others carry the sender name
func renderChatMessage(msg internal.ChatMessage, own bool, width int) string {
	if width <= 0 {
		width = defaultChatWidth
	}
	bodyWidth := width * 3 / 4
	body := wrapText(msg.Text, bodyWidth)

	if own {
		block := lipgloss.JoinVertical(lipgloss.Right,
			timestampStyle.Render(msg.Timestamp),
			ownMessageStyle.Render(body))
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}

	name := msg.SenderName
	if name == "" {
		name = "Unknown"
	}
	return senderStyle.Render(name) + " " + timestampStyle.Render(msg.Timestamp) + "\n" + body
}

// renderPresence lists online trainers in the order the server sent them
func renderPresence(entries []realtime.PresenceEntry) string {
	if len(entries) == 0 {
		return presenceStyle.Render("Nobody online")
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		if e.Self {
			names[i] = selfStyle.Render(e.Label)
		} else {
			names[i] = e.Label
		}
	}
	return presenceStyle.Render(fmt.Sprintf("Online (%d): ", len(entries))) + strings.Join(names, ", ")
}

func terminalWidth() int {
	if chatWidth > 0 {
		return chatWidth
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultChatWidth
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatExportDir, "export", "e", "", "Write the transcript to this directory on exit")
	chatCmd.Flags().StringVarP(&chatFormat, "format", "f", "md", "Transcript format: jsonl, md, yaml, json")
	chatCmd.Flags().IntVarP(&chatWidth, "width", "w", 0, "Render width (default terminal width)")
}
