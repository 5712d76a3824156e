package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/garyjia/leave-bot/internal/application/service"
	"github.com/garyjia/leave-bot/internal/config"
	"github.com/garyjia/leave-bot/internal/domain/entity"
	larkext "github.com/garyjia/leave-bot/internal/infrastructure/external/lark"
	"github.com/garyjia/leave-bot/internal/infrastructure/persistence/repository"
	"github.com/garyjia/leave-bot/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/garyjia/leave-bot/internal/interfaces/http"
	"github.com/garyjia/leave-bot/pkg/database"
	"github.com/garyjia/leave-bot/pkg/utils"
)

func main() {
	// Local development credentials; absent in production.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting leave bot",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Persistence
	txManager := sqlite.NewDB(db.DB, logger)
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	balanceRepo := repository.NewBalanceRepository(db.DB, logger)

	serviceLogger := &zapLoggerAdapter{logger: logger}

	ledger := service.NewBalanceLedger(balanceRepo, entity.DefaultBalances{
		Annual:   cfg.Leave.DefaultAnnualDays,
		Sick:     cfg.Leave.DefaultSickDays,
		Personal: cfg.Leave.DefaultPersonalDays,
	}, serviceLogger)

	// Lark transport
	larkClient := larkext.NewClient(larkext.Config{
		AppID:     cfg.Lark.AppID,
		AppSecret: cfg.Lark.AppSecret,
	}, logger)
	messenger := larkext.NewMessenger(larkClient, logger)
	notifier := larkext.NewNotifier(messenger, logger)
	directory := larkext.NewDirectory(larkClient, logger)

	leaveService := service.NewLeaveService(requestRepo, ledger, txManager, notifier, serviceLogger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ReportLimit:  cfg.Leave.ReportLimit,
		VerifyToken:  cfg.Lark.VerifyToken,
		EncryptKey:   cfg.Lark.EncryptKey,
	}, leaveService, directory, serviceLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

// zapLoggerAdapter adapts zap.Logger to the narrow Logger interfaces
// the service and HTTP layers accept.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
