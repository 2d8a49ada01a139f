package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ngpayroll/internal/domain/audit"
	"ngpayroll/internal/domain/notifications"
	"ngpayroll/internal/domain/payroll"
	"ngpayroll/internal/platform/config"
	cryptoutil "ngpayroll/internal/platform/crypto"
	"ngpayroll/internal/platform/db"
	"ngpayroll/internal/platform/email"
	"ngpayroll/internal/platform/metrics"
	"ngpayroll/migrations"
)

// ErrHistoryUnavailable is returned when no audit table is configured.
var ErrHistoryUnavailable = errors.New("submission history needs the postgres database; set DATABASE_URL")

// App holds the wired payroll service and the resources backing it.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Crypto   *cryptoutil.Service
	Payroll  *payroll.Service
	Audit    *audit.Service
	Payslips *payroll.PayslipWriter
	Metrics  *metrics.Collector
	Pool     *pgxpool.Pool
	SQLite   *sql.DB
}

// New connects the configured store, roster source and audit recorder.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Crypto: crypto, Metrics: metrics.New()}
	if cfg.UsesPostgres() {
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		a.Pool = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, migrations.FS, migrations.PostgresDir); err != nil {
				a.Close()
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
	}

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	recipients := notifications.Recipients{Finance: cfg.FinanceEmail, HR: cfg.HREmail}
	opts := []payroll.Option{
		payroll.WithLogger(logger),
		payroll.WithMetrics(a.Metrics),
		payroll.WithNotifier(notifications.New(email.New(cfg), cfg.EmailFrom, recipients, logger)),
	}
	switch {
	case cfg.RosterSource == config.RosterSourcePostgres:
		opts = append(opts, payroll.WithRoster(payroll.NewPGRoster(a.Pool)))
	case cfg.RosterFile != "":
		opts = append(opts, payroll.WithRoster(payroll.NewFileRoster(cfg.RosterFile)))
	}
	if a.Pool != nil {
		a.Audit = audit.New(a.Pool)
		opts = append(opts, payroll.WithAudit(a.Audit))
	} else {
		opts = append(opts, payroll.WithAudit(audit.NewLogRecorder(logger)))
	}

	a.Payroll = payroll.NewService(store, opts...)
	a.Payslips = payroll.NewPayslipWriter(cfg.PayslipDir, crypto)

	logger.Debug("payroll service ready",
		zap.String("store", cfg.Store),
		zap.String("rosterSource", cfg.RosterSource),
		zap.Bool("encrypted", crypto.Configured()),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (payroll.Store, error) {
	switch a.Config.Store {
	case config.StoreFile:
		return payroll.NewFileStore(a.Config.DataFile, a.Crypto), nil
	case config.StoreSQLite:
		conn, err := db.OpenSQLite(a.Config.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite open failed: %w", err)
		}
		a.SQLite = conn
		if a.Config.RunMigrations {
			if err := db.MigrateSQLite(ctx, conn, migrations.FS, migrations.SQLiteDir); err != nil {
				return nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return payroll.NewSQLiteStore(conn), nil
	case config.StorePostgres:
		return payroll.NewPGStore(a.Pool), nil
	case config.StoreMemory:
		return payroll.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown payroll store %q", a.Config.Store)
	}
}

// History returns the recorded transitions of one submission, newest first,
// with the total number of events.
func (a *App) History(ctx context.Context, submissionID string, limit, offset int) (int, []audit.Event, error) {
	if a.Audit == nil {
		return 0, nil, ErrHistoryUnavailable
	}
	filter := audit.Filter{EntityType: audit.EntityPayrollSubmission, EntityID: submissionID}
	total, err := a.Audit.Count(ctx, filter)
	if err != nil {
		return 0, nil, fmt.Errorf("count audit events: %w", err)
	}
	events, err := a.Audit.List(ctx, filter, limit, offset)
	if err != nil {
		return 0, nil, fmt.Errorf("list audit events: %w", err)
	}
	return total, events, nil
}

func (a *App) Close() {
	a.Logger.Debug("payroll operations", zap.Any("metrics", a.Metrics.Snapshot()))
	if a.SQLite != nil {
		_ = a.SQLite.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	_ = a.Logger.Sync()
}
