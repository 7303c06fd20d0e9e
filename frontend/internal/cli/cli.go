// Package cli is the terminal client. It runs the same session, auth, board and boarding
// logic as the web frontend and prints modals as text.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/portal-dev/portal/frontend/internal/apiclient"
	"github.com/portal-dev/portal/frontend/internal/auth"
	"github.com/portal-dev/portal/frontend/internal/modal"
	"github.com/portal-dev/portal/frontend/internal/session"
	"github.com/portal-dev/portal/shared/config"
	"github.com/portal-dev/portal/shared/domain"
	"github.com/portal-dev/portal/shared/logger"
)

// ErrReported means the failure was already printed as a modal. Callers should exit
// non-zero without printing it again.
var ErrReported = errors.New("reported")

type App struct {
	Public config.Public
	Store  session.Store
	API    *apiclient.APIClient
	Auth   *auth.Flow

	in *bufio.Reader
}

// NewApp wires an App by hand. Commands of an App built this way skip config loading.
func NewApp(public config.Public, store session.Store, api *apiclient.APIClient) *App {
	return &App{Public: public, Store: store, API: api, Auth: auth.NewFlow(api)}
}

func NewRootCmd(app *App) *cobra.Command {
	var configFolder, apiURL, sessionPath string

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Commuter portal from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(configFolder, apiURL, sessionPath)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	f.StringVar(&apiURL, "api", "", "backend API base URL, overrides the config")
	f.StringVar(&sessionPath, "session", "", "session file (default <user config dir>/portal/session.json)")

	root.AddCommand(
		app.pingCmd(),
		app.loginCmd(),
		app.registerCmd(),
		app.logoutCmd(),
		app.whoamiCmd(),
		app.postsCmd(),
		app.boardingCmd(),
	)
	return root
}

func (a *App) setup(configFolder, apiURL, sessionPath string) error {
	a.in = nil
	if a.API != nil {
		return nil
	}

	cfg, err := config.Load(configFolder)
	if err != nil {
		return err
	}
	logger.SetService("portal")
	logger.InitializeTo(os.Stderr, cfg.Public.Log.Level, cfg.Public.Log.JSON)

	if apiURL != "" {
		cfg.Public.Frontend.APIBaseURL = apiURL
	}
	if sessionPath == "" {
		if sessionPath, err = session.DefaultFilePath(); err != nil {
			return err
		}
	}

	a.Public = cfg.Public
	a.Store = session.NewFileStore(sessionPath)
	a.API = apiclient.New(cfg.Public.Frontend.APIBaseURL, cfg.Public.Frontend.RequestTimeout)
	a.Auth = auth.NewFlow(a.API)
	return nil
}

func show(cmd *cobra.Command, m *modal.Modal) {
	if err := modal.WriteText(cmd.OutOrStdout(), m.State()); err != nil {
		logger.Log.Debug("writing modal", "error", err)
	}
}

// fail prints err the way the web frontend would show it and returns ErrReported.
func fail(cmd *cobra.Command, op auth.Op, err error) error {
	m := modal.New()
	auth.Notify(m, op, err)
	show(cmd, m)
	return ErrReported
}

func warn(cmd *cobra.Command, title, message string) error {
	m := modal.New()
	m.Warning(title, message)
	show(cmd, m)
	return ErrReported
}

// requireSession loads the stored session or reports that a login is needed.
func (a *App) requireSession(cmd *cobra.Command) (domain.Session, error) {
	sess, err := a.Store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return domain.Session{}, warn(cmd, "Login required", "Please log in to continue.")
	}
	if err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// expired drops a session the backend no longer accepts.
func (a *App) expired(cmd *cobra.Command, err error) bool {
	if !apiclient.IsStatus(err, http.StatusUnauthorized) {
		return false
	}
	if cerr := a.Store.Clear(); cerr != nil {
		logger.Log.Error("clearing session", "error", cerr)
	}
	_ = warn(cmd, "Login required", "Your session has expired. Please log in again.")
	return true
}

// prompt reads one line from the command input. EOF counts as an empty answer.
func (a *App) prompt(cmd *cobra.Command, label string) (string, error) {
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) confirm(cmd *cobra.Command, label string) (bool, error) {
	answer, err := a.prompt(cmd, label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func parseID(arg string) (domain.PostId, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return id, nil
}
