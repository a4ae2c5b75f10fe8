// cmd/web/main.go
//
// Intake – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load config (conf/.env → conf/global.yaml → INTAKE_* env).
//
//  2. Start the rotating logger (tees to console when running in a TTY).
//
//  3. Resolve the store DSN (Vault, when store.password_secret is set),
//     open the store, and apply component migrations for mysql.
//
//  4. Load the optional GeoLite2 DB for request enrichment.
//
//  5. Register components:
//
//     • patients – JSON persistence API at /api/patients
//     • intake   – server-rendered form at /intake, submitting through the
//                  gateway client to gateway.base_url
//
//  6. Build the chi router, expose /metrics and /healthz, and wrap the
//     whole tree with ForceHTTPS.
//
//  7. Serve until SIGINT or SIGTERM, then shut down gracefully.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/intake/components/intake"
	"github.com/yanizio/intake/components/patients"
	"github.com/yanizio/intake/internal/component"
	"github.com/yanizio/intake/internal/config"
	"github.com/yanizio/intake/internal/database"
	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/gateway"
	"github.com/yanizio/intake/internal/logger"
	"github.com/yanizio/intake/internal/middleware"
	"github.com/yanizio/intake/internal/requestinfo"
	"github.com/yanizio/intake/internal/server"
	"github.com/yanizio/intake/internal/store"
	"github.com/yanizio/intake/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("intake: %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config and logger ───────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logOut, err := logger.New(cfg.Paths.Root, runningInTTY(), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 2.  Store ───────────────────────────────────────────────────────
	//
	st, db, err := openStore(ctx, cfg, logOut)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	//
	// ── 3.  Request enrichment ──────────────────────────────────────────
	//
	if cfg.Intake.GeoIPDB != "" {
		if err := requestinfo.InitGeo(cfg.Abs(cfg.Intake.GeoIPDB)); err != nil {
			logOut.Warnw("geoip disabled", "err", err)
		} else {
			defer requestinfo.CloseGeo()
		}
	}

	//
	// ── 4.  Components ──────────────────────────────────────────────────
	//
	csrf, err := form.NewCSRF(cfg.Intake.CSRFKey)
	if err != nil {
		return err
	}
	gw := gateway.New(cfg.Gateway.BaseURL,
		gateway.WithTimeout(cfg.Gateway.Timeout),
		gateway.WithLogger(logOut.Named("gateway")))

	component.Register(patients.New(st, patients.WithLogger(logOut.Named("patients"))))
	page := intake.New(gw, csrf, cfg.Intake.SessionCapacity, intake.WithLogger(logOut.Named("intake")))
	component.Register(page)

	if db != nil {
		if err := database.Migrate(ctx, db, component.Migrations()); err != nil {
			return err
		}
	}

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(requestinfo.Enrich, middleware.Security, middleware.CORS(cfg.HTTP.CORSOrigins))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/intake", http.StatusFound)
	})
	component.Mount(r)

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, r))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr, "components", component.AllNames())
		return server.Run(gctx, srv)
	})
	g.Go(func() error { return page.Sweep(gctx, cfg.Intake.SessionIdle) })
	err = g.Wait()
	logOut.Infow("server stopped", "err", err)
	return err
}

// openStore opens the configured store.  For mysql the DSN password is
// resolved through Vault when store.password_secret is set, and the pool is
// returned so migrations can run on it.
func openStore(ctx context.Context, cfg *config.Config, logOut *zap.SugaredLogger) (store.Store, *sqlx.DB, error) {
	if cfg.Store.Driver != store.DriverMySQL {
		path := cfg.Abs(cfg.Store.Path)
		fs, err := store.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		logOut.Infow("store online", "driver", store.DriverFile, "path", path)
		return fs, nil, nil
	}

	var sg config.SecretGetter
	if cfg.Store.PasswordSecret != "" {
		vc, err := vault.New(ctx, logOut.Named("vault"))
		if err != nil {
			return nil, nil, err
		}
		sg = vc
	}
	dsn, err := cfg.Store.ResolveDSN(ctx, sg)
	if err != nil {
		return nil, nil, err
	}
	db, err := store.OpenDB(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	logOut.Infow("store online", "driver", store.DriverMySQL)
	return store.NewSQLStore(db), db, nil
}
