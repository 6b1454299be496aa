package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pribylovaa/account-client/internal/app"
	"github.com/pribylovaa/account-client/internal/form"
	"github.com/pribylovaa/account-client/internal/terminal"
)

var errUnknownCommand = errors.New("unknown command")

type commands struct {
	app    *app.App
	view   *terminal.View
	stdout io.Writer
	stderr io.Writer
	// stdin — nil означает os.Stdin (с определением терминала).
	stdin io.Reader
}

func (c *commands) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "login":
		return c.login(ctx, args)
	case "register":
		return c.register(ctx, args)
	case "me":
		return c.app.Visit(ctx, app.PathMe)
	case "refresh":
		return c.app.Refresh(ctx)
	case "logout":
		if err := c.app.Logout(ctx); err != nil {
			return err
		}
		return c.app.Follow(ctx)
	case "status":
		return c.status(ctx)
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, name)
	}
}

// credentialFlags — общие флаги login/register.
type credentialFlags struct {
	email, password string
	showPassword    bool
}

func (c *commands) parseCredentials(name string, args []string) (credentialFlags, error) {
	var cf credentialFlags

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(&cf.email, "email", "", "email address (prompted if empty)")
	fs.StringVar(&cf.password, "password", "", "password (prompted if empty)")
	fs.BoolVar(&cf.showPassword, "show-password", false, "echo the password while typing")

	if err := fs.Parse(args); err != nil {
		return cf, err
	}

	return cf, nil
}

func (c *commands) prompter() *terminal.Prompter {
	if c.stdin != nil {
		return terminal.NewPrompterFrom(c.stdin, c.stderr)
	}

	return terminal.NewPrompter(os.Stdin, c.stderr)
}

func (c *commands) login(ctx context.Context, args []string) error {
	cf, err := c.parseCredentials("login", args)
	if err != nil {
		return err
	}

	f := form.NewLoginForm(cf.email, cf.password)
	if cf.showPassword {
		f.ShowPassword.Checked = true
		form.TogglePasswordVisibility(f.Password)
	}

	if err := c.prompter().FillLogin(f); err != nil {
		return err
	}

	err = c.app.Login(ctx, f)
	c.view.LoginErrors(f)
	if err != nil {
		return err
	}

	return c.app.Follow(ctx)
}

func (c *commands) register(ctx context.Context, args []string) error {
	cf, err := c.parseCredentials("register", args)
	if err != nil {
		return err
	}

	f := form.NewRegisterForm(cf.email, cf.password)
	if cf.showPassword {
		f.ShowPassword.Checked = true
		form.TogglePasswordVisibility(f.Password)
	}

	if err := c.prompter().FillRegister(f); err != nil {
		return err
	}

	err = c.app.Register(ctx, f)
	c.view.RegisterErrors(f)

	return err
}

func (c *commands) status(ctx context.Context) error {
	st, err := c.app.Status(ctx)
	if err != nil {
		return err
	}

	switch {
	case st.LoggedIn():
		fmt.Fprintf(c.stdout, "logged in, access token expires %s\n", st.ExpiresAt.Local().Format(time.RFC3339))
	case st.HasAccess:
		fmt.Fprintln(c.stdout, "access token expired")
	default:
		fmt.Fprintln(c.stdout, "not logged in")
	}

	if st.HasRefresh {
		fmt.Fprintln(c.stdout, "refresh token present")
	}

	return nil
}
