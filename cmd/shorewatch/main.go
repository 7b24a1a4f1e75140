// Command shorewatch is the field reporting client: it manages the
// authenticated session and beach/post selection, and submits incident
// and environmental reports to the backend.
package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/viperioribus/shorewatch/internal/adapter/api"
	"github.com/viperioribus/shorewatch/internal/cascade"
	"github.com/viperioribus/shorewatch/internal/config"
	"github.com/viperioribus/shorewatch/internal/observability"
	"github.com/viperioribus/shorewatch/internal/session"
	"github.com/viperioribus/shorewatch/internal/store"
	"github.com/viperioribus/shorewatch/internal/submit"
)

// build-time override (e.g. -ldflags "-X main.version=1.2.3")
var version = "dev"

func main() {
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorewatch",
		Short: "Beach-safety field reporting client",
		Long: strings.TrimSpace(`
shorewatch records structured incident and environmental reports against
a beach and watch post, and submits them to the reporting backend.

Log in once; the credential and the beach/post selection persist across
runs in the platform session store.`),
	}
	cmd.Version = version

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newBeachesCmd())
	cmd.AddCommand(newSelectCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newIncidencesCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// app holds the wired components shared by all commands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	store     store.Store
	session   *session.Session
	client    *api.Client
	directory *api.Authed
	cascade   *cascade.Controller
	pipeline  *submit.Pipeline
}

// newApp loads configuration and wires the component graph. The storage
// backend is chosen here, once, and never reselected.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st, err := store.Open(store.Backend(cfg.StoreBackend), cfg.StorePath, cfg.KeyringService, logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sess := session.New(st, logger)
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	directory := api.NewAuthed(client, sess)
	ctrl := cascade.New(directory, sess, logger, metrics)
	pipe := submit.New(client, sess, logger, metrics)

	return &app{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		store:     st,
		session:   sess,
		client:    client,
		directory: directory,
		cascade:   ctrl,
		pipeline:  pipe,
	}, nil
}

// promptCredentials reads a login (from the arg when given) and a
// password without echo.
func promptCredentials(args []string) (login, password string, err error) {
	if len(args) > 0 {
		login = args[0]
	} else {
		fmt.Print("Login: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("read login: %w", err)
		}
		login = strings.TrimSpace(line)
	}
	if login == "" {
		return "", "", fmt.Errorf("login must not be empty")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	return login, string(raw), nil
}
