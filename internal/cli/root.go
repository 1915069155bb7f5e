// Package cli is the presentation glue: a cobra command tree over the
// service layer. No business rule lives here.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	"expensetracker/internal/storage"
)

var dbPathFlag string

var rootCmd = &cobra.Command{
	Use:           "tracker",
	Short:         "Personal expense tracker",
	Long:          "tracker records expenses against named categories and keeps totals and history per local database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "path to the database file (overrides TRACKER_DB_PATH)")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the wired-up services for one command invocation.
type app struct {
	cfg      *config.Config
	repo     *storage.SQLiteRepository
	expenses *services.ExpenseService
	auth     *services.AuthService
	sessions *session.Manager
}

// openApp loads configuration, opens the store and restores the
// session. The caller must Close it.
func openApp(ctx context.Context) (*app, error) {
	// .env is optional for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	if dbPathFlag != "" {
		cfg.DBPath = dbPathFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Setup(cfg.LogLevel)

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sessions, err := session.NewManager(ctx, repo)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		repo:     repo,
		expenses: services.NewExpenseService(repo),
		auth:     services.NewAuthService(repo, sessions),
		sessions: sessions,
	}, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}

// requireLogin gates the expense and category commands the way the
// screens gate navigation.
func (a *app) requireLogin() error {
	if !a.sessions.IsLoggedIn() {
		return errors.New("not logged in, run 'tracker login' first")
	}
	return nil
}
