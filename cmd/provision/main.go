// Command provision imports employee master data and creates login accounts
// for employees whose derived username is not taken yet.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/travel-desk/itinerary-service/internal/config"
	"github.com/travel-desk/itinerary-service/internal/events"
	"github.com/travel-desk/itinerary-service/internal/importer"
	"github.com/travel-desk/itinerary-service/internal/observability"
	"github.com/travel-desk/itinerary-service/internal/persistence"
	"github.com/travel-desk/itinerary-service/internal/repository"
	"github.com/travel-desk/itinerary-service/internal/repository/memory"
	"github.com/travel-desk/itinerary-service/internal/service"
	"github.com/travel-desk/itinerary-service/internal/worker"
)

func main() {
	importPath := flag.String("import", "", "xlsx workbook of employees to import before provisioning")
	skipProvision := flag.Bool("skip-provision", false, "only import employees; do not create accounts")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *importPath, *skipProvision); err != nil {
		logger.Error("provisioning aborted", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, importPath string, skipProvision bool) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	var (
		identities repository.IdentityRepository
		employees  repository.EmployeeRepository
	)
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		identities = repository.NewIdentityRepository(pg.PoolHandle())
		employees = repository.NewEmployeeRepository(pg.PoolHandle())
	} else {
		logger.Warn("no POSTGRES_DSN; results are discarded when the process exits")
		store := memory.NewStore()
		identities, employees = store.Identities(), store.Employees()
	}

	dispatcher := events.NewInMemoryDispatcher()
	if cfg.Audit.Enabled {
		worker.StartAuditWorker(service.NewAuditService(dispatcher, logger.Named("audit")))
	}
	provisioning := service.NewProvisioningService(service.ProvisioningDependencies{
		IdentityRepo: identities,
		EmployeeRepo: employees,
		Dispatcher:   dispatcher,
		Logger:       logger,
		BcryptCost:   cfg.Auth.BcryptCost,
	})

	if importPath != "" {
		if err := importWorkbook(ctx, provisioning, logger, importPath); err != nil {
			return err
		}
	}
	if skipProvision {
		return nil
	}

	report, err := provisioning.Provision(ctx)
	if err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	fmt.Println(report.Summary())
	return nil
}

func importWorkbook(ctx context.Context, provisioning *service.ProvisioningService, logger *zap.Logger, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	rows, problems, err := importer.ParseEmployeeSheet(file)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	for _, problem := range problems {
		logger.Warn("row rejected", zap.Int("row", problem.Row), zap.String("reason", problem.Reason))
	}

	report := provisioning.ImportEmployees(ctx, rows)
	logger.Info("employee import finished",
		zap.String("file", path),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed+len(problems)))
	return nil
}
