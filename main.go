package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"library-console/config"
	"library-console/library"
	"library-console/library/sqlstore"
	"library-console/logger"
)

// globalOptions are the persistent flags; set ones override the environment.
type globalOptions struct {
	driver   string
	dsn      string
	logLevel string
}

// app is everything a command needs once the store is open.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *sqlstore.Store
	mgr   *library.LibraryManager
}

func (a *app) Close() error { return a.store.Close() }

func (o *globalOptions) open(ctx context.Context, logOut io.Writer, storeOpts ...sqlstore.Option) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if o.driver != "" {
		cfg.Database.Driver = o.driver
	}
	if o.dsn != "" {
		cfg.Database.DSN = o.dsn
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty, Output: logOut})

	storeOpts = append(storeOpts, sqlstore.WithLogger(log.With().Str("component", "sqlstore").Logger()))
	store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, storeOpts...)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("open database failed")
		switch {
		case errors.Is(err, library.ErrConnection):
			return nil, fmt.Errorf("cannot connect to the %s database: %w", cfg.Database.Driver, err)
		case errors.Is(err, library.ErrSchemaMissing):
			return nil, fmt.Errorf("%w (run `library init` first)", err)
		}
		return nil, err
	}

	mgr := library.NewLibraryManager(store,
		library.WithLogger(log),
		library.WithPasswordHasher(library.PasswordHasher{Scheme: library.PasswordScheme(cfg.PasswordScheme)}),
		library.WithWorkflowOptions(library.WithLoanPeriod(cfg.LoanPeriod())),
	)
	return &app{cfg: cfg, log: log, store: store, mgr: mgr}, nil
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "library",
		Short: "Library management console",
		Long: `An interactive console for a small library.

Administrators register books, members and other administrators and list
the catalog, members and loans. Members borrow and return books.

Settings come from LIBRARY_* environment variables; the flags below
override them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			return newConsole(cmd.InOrStdin(), cmd.OutOrStdout(), a.mgr).run(ctx)
		},
	}

	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "Database driver: sqlite3 or postgres")
	root.PersistentFlags().StringVar(&opts.dsn, "db", "", "SQLite file path or PostgreSQL connection URL")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	root.AddCommand(newInitCmd(opts))
	return root
}

func newInitCmd(opts *globalOptions) *cobra.Command {
	var admin library.AdministratorInput

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database tables and, optionally, the first administrator",
		Long: `Creates any missing tables. Existing tables and rows are left untouched.

With --admin-username the command also prompts for a password and
registers that administrator, so the console has someone to log in as.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.open(ctx, cmd.ErrOrStderr(), sqlstore.WithoutSchemaCheck())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.InitSchema(ctx); err != nil {
				return err
			}
			c := newConsole(cmd.InOrStdin(), cmd.OutOrStdout(), a.mgr)
			c.success("Schema ready (%s)", a.cfg.Database.Driver)

			if admin.Username == "" {
				return nil
			}
			admin.Password, admin.Confirm, err = c.askNewSecret(admin.Username)
			if err != nil {
				return err
			}
			id, err := a.mgr.BootstrapAdministrator(ctx, admin)
			if err != nil {
				return err
			}
			c.success("Registered administrator '%s' with ID %d", admin.Username, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&admin.Username, "admin-username", "", "Username of the first administrator")
	cmd.Flags().StringVar(&admin.Name, "admin-name", "", "Display name of the first administrator")
	cmd.Flags().StringVar(&admin.Email, "admin-email", "", "Email of the first administrator")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ ")+err.Error())
		os.Exit(1)
	}
}
