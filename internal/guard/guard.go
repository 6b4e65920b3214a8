// Package guard decides whether a command may run for the current session.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/trainerhub/poketrainer/internal"
)

// Outcome is the tag of a guard Result
type Outcome int

const (
	Authorized Outcome = iota
	Unauthenticated
	Forbidden
	NetworkError
)

func (o Outcome) String() string {
	switch o {
	case Authorized:
		return "authorized"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NetworkError:
		return "network error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the tagged outcome of a guard check. Err carries the cause for
// every outcome but Authorized.
type Result struct {
	Outcome Outcome
	Session *internal.Session
	Err     error
}

// OK reports whether access is granted
func (r Result) OK() bool {
	return r.Outcome == Authorized
}

// Error returns a user facing error for a denied result, nil when authorized
func (r Result) Error() error {
	switch r.Outcome {
	case Authorized:
		return nil
	case Unauthenticated:
		return fmt.Errorf("%w: please log in", internal.ErrLoginRequired)
	case Forbidden:
		return errors.New("access denied: this command requires an admin account")
	default:
		return fmt.Errorf("could not verify your session, try again: %w", r.Err)
	}
}

// Checker is the backend side of a guard
type Checker interface {
	UserAuth(ctx context.Context) (bool, error)
	AdminAuth(ctx context.Context) (bool, error)
}

// SessionSource is the read side of the session store
type SessionSource interface {
	Current() (*internal.Session, error)
}

// Guard runs route checks against the backend
type Guard struct {
	sessions SessionSource
	checker  Checker
}

// New creates a guard
func New(sessions SessionSource, checker Checker) *Guard {
	return &Guard{sessions: sessions, checker: checker}
}

// RequireUser checks that a valid session exists
func (g *Guard) RequireUser(ctx context.Context) Result {
	return g.check(ctx, false)
}

// RequireAdmin checks that a valid session with admin rights exists
func (g *Guard) RequireAdmin(ctx context.Context) Result {
	return g.check(ctx, true)
}

func (g *Guard) check(ctx context.Context, admin bool) Result {
	session, err := g.sessions.Current()
	if err != nil {
		if errors.Is(err, internal.ErrLoginRequired) {
			return Result{Outcome: Unauthenticated, Err: err}
		}
		return Result{Outcome: NetworkError, Err: err}
	}

	call := g.checker.UserAuth
	if admin {
		call = g.checker.AdminAuth
	}
	ok, err := call(ctx)
	if err != nil {
		return classify(err)
	}
	if !ok {
		if admin {
			return Result{Outcome: Forbidden, Err: errors.New("backend denied admin access")}
		}
		return Result{Outcome: Unauthenticated, Err: errors.New("backend rejected the session")}
	}
	return Result{Outcome: Authorized, Session: session}
}

// classify maps a failed auth call onto an outcome
func classify(err error) Result {
	if errors.Is(err, internal.ErrLoginRequired) {
		return Result{Outcome: Unauthenticated, Err: err}
	}
	if apiErr, ok := internal.AsAPIError(err); ok {
		switch {
		case apiErr.IsUnauthorized():
			return Result{Outcome: Unauthenticated, Err: err}
		case apiErr.IsForbidden():
			return Result{Outcome: Forbidden, Err: err}
		}
	}
	return Result{Outcome: NetworkError, Err: err}
}
