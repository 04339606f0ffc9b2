package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	certrepo "github.com/morganoide1/constructora-sub000/internal/certificates/adapter/repo"
	certapi "github.com/morganoide1/constructora-sub000/internal/certificates/api"
	certservice "github.com/morganoide1/constructora-sub000/internal/certificates/service"
	exprepo "github.com/morganoide1/constructora-sub000/internal/expenses/adapter/repo"
	expapi "github.com/morganoide1/constructora-sub000/internal/expenses/api"
	expservice "github.com/morganoide1/constructora-sub000/internal/expenses/service"
	ledgerrepo "github.com/morganoide1/constructora-sub000/internal/ledger/adapter/repo"
	ledgerapi "github.com/morganoide1/constructora-sub000/internal/ledger/api"
	ledgerservice "github.com/morganoide1/constructora-sub000/internal/ledger/service"
	"github.com/morganoide1/constructora-sub000/internal/platform/database"
	"github.com/morganoide1/constructora-sub000/internal/platform/logger"
	"github.com/morganoide1/constructora-sub000/internal/platform/server"
	salesrepo "github.com/morganoide1/constructora-sub000/internal/sales/adapter/repo"
	salesapi "github.com/morganoide1/constructora-sub000/internal/sales/api"
	salesservice "github.com/morganoide1/constructora-sub000/internal/sales/service"
)

func main() {
	viper.SetConfigFile("configs/config.yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %s", err)
	}

	appLogger := logger.NewLogger(viper.GetString("server.mode"))

	dsn := viper.GetString("database.dsn")
	maxIdleConns := viper.GetInt("database.max_idle_conns")
	maxOpenConns := viper.GetInt("database.max_open_conns")
	db := database.NewPostgresDB(dsn, maxIdleConns, maxOpenConns)
	database.Migrate(db)

	tx := database.NewGormTxManager(db)

	// -- Account Ledger + Transfer Engine --
	accountRepo := ledgerrepo.NewAccountRepo(db)
	entryRepo := ledgerrepo.NewEntryRepo(db)
	ledgerSvc := ledgerservice.NewLedgerService(tx, accountRepo, entryRepo, appLogger)
	ledgerHandler := ledgerapi.NewLedgerHandler(ledgerSvc)

	// -- Installment Sale Engine --
	saleRepo := salesrepo.NewSaleRepo(db)
	saleSvc := salesservice.NewSaleService(tx, saleRepo, ledgerSvc, appLogger)
	saleHandler := salesapi.NewSaleHandler(saleSvc)

	// -- Contractor Payment Workflow --
	certRepo := certrepo.NewCertificateRepo(db)
	certSvc := certservice.NewCertificateService(tx, certRepo, ledgerSvc, appLogger)
	certHandler := certapi.NewCertificateHandler(certSvc)

	// -- Building Liquidation Engine --
	liquidationRepo := exprepo.NewLiquidationRepo(db)
	propertyRepo := exprepo.NewPropertyRepo(db)
	chargeRepo := exprepo.NewChargeRepo(db)
	liquidationSvc := expservice.NewLiquidationService(tx, liquidationRepo, propertyRepo, chargeRepo, ledgerSvc, appLogger)
	liquidationHandler := expapi.NewLiquidationHandler(liquidationSvc)

	srv := server.NewServer(
		appLogger,
		viper.GetString("server.port"),
		viper.GetString("server.mode"),
		ledgerHandler,
		saleHandler,
		certHandler,
		liquidationHandler,
	)

	go func() {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server startup failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
