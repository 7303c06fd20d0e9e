package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/portal-dev/portal/frontend/internal/auth"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/frontend/internal/session"
	"github.com/portal-dev/portal/shared/validation"
)

func (a *App) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the backend connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.Auth.Ping(cmd.Context())
			if err != nil {
				return fail(cmd, auth.OpPing, err)
			}
			m := modal.New()
			auth.NotifyPing(m, text)
			show(cmd, m)
			return nil
		},
	}
}

func (a *App) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session for later commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = a.prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = a.prompt(cmd, "Password: "); err != nil {
					return err
				}
			}

			sess, err := a.Auth.Login(cmd.Context(), a.Store, email, password)
			if err != nil {
				return fail(cmd, auth.OpLogin, err)
			}
			m := modal.New()
			auth.NotifyLoggedIn(m, sess)
			show(cmd, m)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, asked for when omitted")
	return cmd
}

func (a *App) registerCmd() *cobra.Command {
	var form validation.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if form.Password == "" {
				if form.Password, err = a.prompt(cmd, "Password: "); err != nil {
					return err
				}
			}
			if form.ConfirmPassword == "" {
				if form.ConfirmPassword, err = a.prompt(cmd, "Confirm password: "); err != nil {
					return err
				}
			}

			if _, err := a.Auth.Register(cmd.Context(), a.Store, form); err != nil {
				var fe validation.FieldErrors
				if errors.As(err, &fe) {
					out := cmd.OutOrStdout()
					for _, f := range fe.Fields() {
						fmt.Fprintf(out, "%s: %s\n", f, fe[f])
					}
					return ErrReported
				}
				return fail(cmd, auth.OpRegister, err)
			}
			m := modal.New()
			auth.NotifyRegistered(m, form.Name)
			show(cmd, m)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&form.Email, "email", "e", "", "account email")
	f.StringVarP(&form.Name, "name", "n", "", "display name")
	f.StringVarP(&form.Password, "password", "p", "", "password, asked for when omitted")
	f.StringVar(&form.ConfirmPassword, "confirm", "", "password again, asked for when omitted")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Store.Clear(); err != nil {
				return err
			}
			m := modal.New()
			auth.NotifyLoggedOut(m)
			show(cmd, m)
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.Store.Load()
			if errors.Is(err, session.ErrNoSession) {
				return warn(cmd, "Not logged in", "Run portal login first.")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.Email)
			return nil
		},
	}
}
