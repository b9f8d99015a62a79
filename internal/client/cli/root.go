package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the authctl command tree. Input prompts read from in.
func NewRootCmd(dial Dialer, in io.Reader) *cobra.Command {
	app := &App{reader: bufio.NewReader(in)}

	var (
		configFile string
		addr       string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:           "authctl",
		Short:         "Command-line client for the authkeeper service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ServerEndpointAddr = addr
			}
			if cmd.Flags().Changed("timeout") {
				cfg.RequestTimeout = timeout
			}

			c, err := dial(cfg)
			if err != nil {
				return fmt.Errorf("connecting to %s: %w", cfg.ServerEndpointAddr, err)
			}

			app.config, app.client = cfg, c
			app.prompt, app.out = cmd.ErrOrStderr(), cmd.OutOrStdout()
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if app.client == nil {
				return nil
			}
			return app.client.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "JSON config file path")
	cmd.PersistentFlags().StringVarP(&addr, "addr", "a", "", "server gRPC address (host:port)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-call timeout")

	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newMeCmd(app))

	return cmd
}

func newSignupCmd(app *App) *cobra.Command {
	var name, email, role string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if name == "" {
				if name, err = GetSimpleText(app.reader, "Enter name", app.prompt); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = GetSimpleText(app.reader, "Enter email", app.prompt); err != nil {
					return err
				}
			}

			password, err := GetPassword(app.reader, app.prompt)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			user, err := app.client.Signup(ctx, name, email, password, role)
			if err != nil {
				return err
			}

			fmt.Fprintln(app.out, "User created successfully")
			app.printUser(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "", "USER or ADMIN (default USER)")

	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		Long: `Log in and print the issued token on standard output. Prompts go to
standard error, so the token can be captured with
  export AUTHKEEPER_TOKEN=$(authctl login --email you@example.com)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = GetSimpleText(app.reader, "Enter email", app.prompt); err != nil {
					return err
				}
			}

			password, err := GetPassword(app.reader, app.prompt)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			token, user, err := app.client.Login(ctx, email, password)
			if err != nil {
				return err
			}

			if user != nil {
				fmt.Fprintf(app.prompt, "Logged in as %s (%s)\n", user.Name, user.Role)
			}
			fmt.Fprintln(app.out, token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")

	return cmd
}

var errNoToken = errors.New("no token: pass --token or set AUTHKEEPER_TOKEN")

func newMeCmd(app *App) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the account the token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = app.config.Token
			}
			if token == "" {
				return errNoToken
			}

			ctx, cancel := app.callContext(cmd.Context())
			defer cancel()

			user, err := app.client.Me(ctx, token)
			if err != nil {
				return err
			}

			app.printUser(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "bearer token from login")

	return cmd
}
