package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/idkeeper/internal/api"
	"github.com/dmitrijs2005/idkeeper/internal/client/client"
	"github.com/dmitrijs2005/idkeeper/internal/client/services"
	"github.com/dmitrijs2005/idkeeper/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for email, password and an optional display name and
// creates the account. A successful registration also logs the user in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name (optional)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	sess, err := a.sessions.Register(ctx, email, password, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s, session valid until %s\n", sess.User.Email, formatTime(sess.ExpiresAt))
	return nil
}

// Login prompts for credentials and starts a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	sess, err := a.sessions.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s, session valid until %s\n", sess.User.Email, formatTime(sess.ExpiresAt))
	return nil
}

// WhoAmI prints the account the current session belongs to.
func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	u, err := a.sessions.WhoAmI(ctx)
	if err != nil {
		return err
	}

	printUser(a, u)
	return nil
}

// Refresh swaps the session token for a new one.
func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	sess, err := a.sessions.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Token refreshed, valid until %s\n", formatTime(sess.ExpiresAt))
	return nil
}

// Logout forgets the local session.
func (a *App) Logout(context.Context) error {
	if !a.isLoggedIn() {
		return services.ErrNotLoggedIn
	}
	a.sessions.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func printUser(a *App, u *api.User) {
	fmt.Fprintf(a.out, "ID:      %s\n", u.ID)
	fmt.Fprintf(a.out, "Email:   %s\n", u.Email)
	if u.Name != "" {
		fmt.Fprintf(a.out, "Name:    %s\n", u.Name)
	}
	fmt.Fprintf(a.out, "Roles:   %s\n", strings.Join(u.Roles, ", "))
	fmt.Fprintf(a.out, "Active:  %t\n", u.IsActive)
	fmt.Fprintf(a.out, "Created: %s\n", formatTime(u.CreatedAt))
}

func formatTime(t time.Time) string {
	return t.Local().Format(time.DateTime)
}

// describe turns an error into a line for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return "not logged in, use 'login' first"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, common.ErrInvalidToken):
		if tokenReason(err) == common.TokenReasonExpired {
			return "session expired, please log in again"
		}
		return "session is no longer valid, please log in again"
	default:
		return err.Error()
	}
}

func tokenReason(err error) string {
	var se *client.ServerError
	if errors.As(err, &se) {
		return se.TokenReason
	}
	return ""
}
