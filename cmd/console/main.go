// Command console is the mall operations console CLI. It authenticates
// operators against the account directory, keeps the session on disk between
// invocations, and reports what the signed-in operator may access.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"mallops-console/internal/access"
	"mallops-console/internal/audit"
	authservice "mallops-console/internal/auth/service"
	"mallops-console/internal/config"
	"mallops-console/internal/db"
	"mallops-console/internal/directory/repository"
	directoryservice "mallops-console/internal/directory/service"
	"mallops-console/internal/gates"
	"mallops-console/internal/security"
	sessionstore "mallops-console/internal/session/store"
	teleotel "mallops-console/internal/telemetry/otel"
	"mallops-console/internal/token"
)

const serviceName = "mallops-console"

// app holds the wired dependencies shared by all subcommands.
type app struct {
	cfg      *config.Config
	auth     *authservice.AuthService
	verifier *directoryservice.Verifier
	gates    *gates.Evaluator
	shutdown func(context.Context) error
	closeDB  func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	providers, err := teleotel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.AppEnv != "production")
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	var tracer trace.Tracer
	if cfg.OTLPEndpoint != "" {
		tracer = providers.TracerProvider.Tracer("auth")
	}

	var repo directoryservice.AccountRepo
	closeDB := func() error { return nil }
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("directory database: %w", err)
		}
		repo = repository.NewPostgres(conn)
		closeDB = conn.Close
	} else {
		table, err := repository.LoadTable(cfg.UsersFile)
		if err != nil {
			return nil, err
		}
		mem, err := repository.NewMemoryFromTable(table)
		if err != nil {
			return nil, err
		}
		repo = mem
	}

	hasher := security.NewHasher(cfg.EffectiveBcryptCost())
	verifier := directoryservice.NewVerifier(repo, hasher, cfg.VerifyDelayDuration())
	codec := token.NewCodec(cfg.TokenTTLDuration())
	sessions := sessionstore.NewFileStore(cfg.StorageDir)
	auth := authservice.NewAuthService(verifier, codec, sessions, audit.NewLogWriter(), tracer)

	return &app{
		cfg:      cfg,
		auth:     auth,
		verifier: verifier,
		gates:    gates.NewEvaluator(),
		shutdown: providers.Shutdown,
		closeDB:  closeDB,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.closeDB(); err != nil {
		log.Printf("closing directory database: %v", err)
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
}

func main() {
	root := &cobra.Command{
		Use:           "console",
		Short:         "Mall operations console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(loginCmd(), logoutCmd(), whoamiCmd(), accessCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			p, err := a.auth.Login(ctx, args[0], password)
			if err != nil {
				// One message for unknown user and bad password so the CLI
				// cannot be used to enumerate usernames.
				if errors.Is(err, directoryservice.ErrUnknownUser) ||
					errors.Is(err, directoryservice.ErrInvalidPassword) {
					return errors.New("invalid credentials")
				}
				if errors.Is(err, directoryservice.ErrInactiveAccount) {
					return errors.New("account disabled")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", p.Username, p.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if err := a.auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			p := a.auth.RestoreSession(ctx)
			if p == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username:  %s\n", p.Username)
			if p.FullName != "" {
				fmt.Fprintf(out, "Name:      %s\n", p.FullName)
			}
			fmt.Fprintf(out, "Role:      %s\n", p.Role)
			if p.MallID != nil {
				fmt.Fprintf(out, "Mall:      %d\n", *p.MallID)
			}
			if p.ShopID != nil {
				fmt.Fprintf(out, "Shop:      %d\n", *p.ShopID)
			}
			return nil
		},
	}
}

func accessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "access",
		Short: "Show accessible malls, shops and feature gates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			p := a.auth.RestoreSession(ctx)
			if p == nil {
				return errors.New("not signed in")
			}
			universe, err := a.verifier.Universe(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Malls: %s\n", formatIDs(access.AccessibleMalls(universe, p)))
			fmt.Fprintf(out, "Shops: %s\n", formatIDs(access.AccessibleShops(universe, p)))

			g, err := a.gates.Evaluate(ctx, p)
			if err != nil {
				return fmt.Errorf("feature gates: %w", err)
			}
			fmt.Fprintln(out, "Gates:")
			fmt.Fprintf(out, "  manage_campaigns: %v\n", g.ManageCampaigns)
			fmt.Fprintf(out, "  view_analytics:   %v\n", g.ViewAnalytics)
			fmt.Fprintf(out, "  manage_templates: %v\n", g.ManageTemplates)
			fmt.Fprintf(out, "  manage_users:     %v\n", g.ManageUsers)
			return nil
		},
	}
}

func formatIDs(ids []int) string {
	if len(ids) == 0 {
		return "(none)"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}
