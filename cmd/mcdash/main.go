package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gnmyt/MCDash-sub000/internal/accounts"
	"github.com/gnmyt/MCDash-sub000/internal/audit/chain"
	"github.com/gnmyt/MCDash-sub000/internal/cli/common"
	"github.com/gnmyt/MCDash-sub000/internal/events"
	"github.com/gnmyt/MCDash-sub000/internal/infra/persistence/gormdb"
	"github.com/gnmyt/MCDash-sub000/internal/jobs"
	"github.com/gnmyt/MCDash-sub000/internal/permission"
	"github.com/gnmyt/MCDash-sub000/internal/platform"
	"github.com/gnmyt/MCDash-sub000/internal/properties"
	"github.com/gnmyt/MCDash-sub000/internal/routes"
	httpserver "github.com/gnmyt/MCDash-sub000/internal/server/http"
	"github.com/gnmyt/MCDash-sub000/internal/session"
	"github.com/gnmyt/MCDash-sub000/internal/web"
)

func main() {
	var cfgFile string
	root := &cobra.Command{
		Use:   "mcdash",
		Short: "Self-hosted game server dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := common.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			if f := cmd.Flags().Lookup("http-addr"); f.Changed {
				v.Set("http.addr", f.Value.String())
			}
			if f := cmd.Flags().Lookup("data-dir"); f.Changed {
				v.Set("data.dir", f.Value.String())
			}
			return run(cmd.Context(), v)
		},
	}
	root.Flags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	root.Flags().String("http-addr", ":7867", "HTTP listen address")
	root.Flags().String("data-dir", "data", "directory for database, audit log and backups")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, v *viper.Viper) error {
	common.SetupLogger(
		v.GetString("log.level"), v.GetString("log.format"), v.GetString("log.file"),
		v.GetInt("log.max_size"), v.GetInt("log.max_backups"), v.GetInt("log.max_age"),
		v.GetBool("log.compress"),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir := v.GetString("data.dir")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	db, err := gormdb.Open(v.GetString("data.driver"), v.GetString("data.dsn"), dataDir)
	if err != nil {
		return err
	}

	acc := accounts.NewStore(db)
	sess := session.NewStore(db)
	perms := permission.NewStore(db)
	scheds := jobs.NewStore(db)
	for _, m := range []interface{ AutoMigrate() error }{acc, sess, perms, scheds} {
		if err := m.AutoMigrate(); err != nil {
			return err
		}
	}
	if err := bootstrapAdmin(ctx, acc); err != nil {
		return err
	}

	audit, err := chain.NewWriter(filepath.Join(dataDir, "audit.log"))
	if err != nil {
		return err
	}
	defer audit.Close()

	dispatcher := events.NewDispatcher()
	console := platform.NewConsole(dispatcher, 500)
	serverRoot := v.GetString("server.root")
	adapter := platform.NewLocalAdapter(serverRoot, console)

	props := properties.NewFile(filepath.Join(serverRoot, v.GetString("server.properties")))
	go func() {
		if err := properties.Watch(ctx, props, dispatcher); err != nil {
			slog.Warn("properties watcher stopped", "error", err)
		}
	}()

	runner := &jobs.Runner{Store: scheds, Adapter: adapter}
	go runner.Run(ctx)

	reg := web.NewRegistry()
	routes.Register(reg, &routes.Deps{
		Accounts: acc, Sessions: sess, Perms: perms, Schedules: scheds,
		Adapter: adapter, Console: console, Props: props, Audit: audit,
	})
	pipeline := &web.Pipeline{
		Prefix: "/api", Registry: reg,
		Sessions: sess, Admins: acc, Perms: perms,
	}
	srv := httpserver.New(httpserver.Config{
		Addr:         v.GetString("http.addr"),
		StaticDir:    v.GetString("http.static_dir"),
		AllowOrigins: v.GetString("http.allow_origins"),
	}, pipeline, dispatcher, httpserver.Feeds(console))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// bootstrapAdmin creates the first account when the table is empty. The
// generated password is printed once; the lowest id makes this account the
// admin from then on.
func bootstrapAdmin(ctx context.Context, acc *accounts.Store) error {
	_, ok, err := acc.AdminID(ctx)
	if err != nil || ok {
		return err
	}
	password, err := session.NewToken(12)
	if err != nil {
		return err
	}
	if _, err := acc.Create(ctx, "admin", password); err != nil {
		return err
	}
	slog.Info("created initial admin account", "username", "admin", "password", password)
	return nil
}
