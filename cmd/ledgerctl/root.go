package main

import (
	"fmt"

	ledgerapp "github.com/opsease/backend/internal/application/ledger"
	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/opsease/backend/internal/infrastructure/logger"
	"github.com/opsease/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand shares once the root pre-run has loaded it
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Operator tools for the OpsEase ledger",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.log != nil {
				_ = logger.Sync(a.log)
			}
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newVerifyCmd(a),
		newRebalanceCmd(a),
		newTokenCmd(a),
		newEventsCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{
		Level:      a.logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// openLedger connects to the configured database and returns a ledger
// service without event publishing. close releases the connection.
func (a *app) openLedger() (svc *ledgerapp.Service, closeFn func(), err error) {
	gormLog := logger.NewGormLogger(a.log, logger.MapGormLogLevel(a.logLevel))
	db, err := persistence.NewDatabaseWithLogger(&a.cfg.Database, gormLog)
	if err != nil {
		return nil, nil, err
	}

	svc = ledgerapp.NewService(
		persistence.NewGormLedgerEntryRepository(db.DB),
		persistence.NewGormTransactionManager(db.DB),
		ledgerapp.NewMutexPartyLocker(),
		nil,
		a.log,
	)
	return svc, func() {
		if err := db.Close(); err != nil {
			a.log.Warn("Error closing database", zap.Error(err))
		}
	}, nil
}
