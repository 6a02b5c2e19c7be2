package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/config"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/compensation"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/rbp"
	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"github.com/cmlabs-hris/compensation-backend-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/compensation-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/authz"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/conditions"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/directory"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/successfactors"
	"github.com/cmlabs-hris/compensation-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/compensation-backend-go/internal/repository/postgresql"
	compensationService "github.com/cmlabs-hris/compensation-backend-go/internal/service/compensation"
	rbpService "github.com/cmlabs-hris/compensation-backend-go/internal/service/rbp"
	workflowService "github.com/cmlabs-hris/compensation-backend-go/internal/service/workflow"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(app config.AppConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(app.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "compensation-backend"),
		slog.String("env", app.Env),
	)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var db *database.DB
	if cfg.UsesDatabase() {
		var err error
		db, err = database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if err := postgresql.EnsureSchema(ctx, db); err != nil {
			return err
		}
	}

	var worksheetRepo compensation.WorksheetRepository = memory.NewWorksheetRepository()
	if cfg.Compensation.Store == config.StorePostgres {
		worksheetRepo = postgresql.NewWorksheetRepository(db)
	}
	var workflowStore workflow.Store = memory.NewWorkflowStore()
	if cfg.Workflow.Store == config.StorePostgres {
		workflowStore = postgresql.NewWorkflowStore(db)
	}

	// HR platform
	var (
		vendor compensation.VendorGateway
		source rbp.PermissionSource
	)
	if cfg.SuccessFactors.Enabled() {
		httpClient, err := oauth.NewHTTPClient(ctx, oauth.Credentials{
			TokenURL:     cfg.SuccessFactors.TokenURL,
			ClientID:     cfg.SuccessFactors.ClientID,
			ClientSecret: cfg.SuccessFactors.ClientSecret,
			Username:     cfg.SuccessFactors.Username,
			Password:     cfg.SuccessFactors.Password,
		}, cfg.SuccessFactors.Timeout)
		if err != nil {
			return fmt.Errorf("successfactors client: %w", err)
		}
		client := successfactors.NewClient(cfg.SuccessFactors.URL, httpClient, logger)
		vendor = client
		source = client
		logger.Info("successfactors integration enabled", slog.String("url", cfg.SuccessFactors.URL))
	} else {
		logger.Warn("successfactors integration disabled, worksheets are local only")
	}

	// Permissions
	policy, err := authz.NewAuthorizer(rbp.RolePermissions)
	if err != nil {
		return fmt.Errorf("build rbp policy: %w", err)
	}
	for from, to := range cfg.RBP.RoleAliases {
		if err := policy.Inherit(from, to); err != nil {
			return fmt.Errorf("rbp role alias %s: %w", from, err)
		}
	}
	rbpSvc := rbpService.NewRBPService(source, policy, cfg.RBP.FailOpen, logger)

	// Compensation
	mode, err := compensation.ParseCalculationMode(cfg.Compensation.DefaultMode)
	if err != nil {
		return err
	}
	compSvc := compensationService.NewCompensationService(worksheetRepo, vendor, compensationService.NewCalculator(), rbpSvc, mode, logger)

	// Workflow
	template, err := fixtures.LoadWorkflowTemplate(cfg.Workflow.TemplatePath)
	if err != nil {
		return err
	}
	roleDirectory, err := loadDirectory(cfg.Workflow.RoleDirectoryPath)
	if err != nil {
		return err
	}
	evaluator, err := conditions.NewEvaluator()
	if err != nil {
		return fmt.Errorf("build condition evaluator: %w", err)
	}
	conditionVars := workflow.ConditionVarsFunc(func(ctx context.Context, companyID, formID string) (map[string]interface{}, error) {
		sum, err := compSvc.Summarize(ctx, companyID, formID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			conditions.VarAmount:        sum.TotalIncreaseAmount,
			conditions.VarTotalIncrease: sum.TotalIncrease,
			conditions.VarEmployees:     sum.Employees,
		}, nil
	})
	hub := sse.NewHub(16)
	wfSvc := workflowService.NewWorkflowService(workflowStore, workflowService.NewEngine(template), roleDirectory, evaluator, conditionVars, hub, rbpSvc, logger)

	// Background jobs
	scheduler := cron.NewScheduler(logger)
	if vendor != nil {
		cron.NewSyncJobs(compSvc, cfg.Sync.RetryInterval).RegisterJobs(scheduler)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP
	jwtSvc, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{CORSOrigins: cfg.App.CORSOrigins, Logger: logger},
		jwtSvc,
		rbpSvc,
		appHTTP.NewCompensationHandler(compSvc),
		appHTTP.NewWorkflowHandler(wfSvc, jwtSvc),
		appHTTP.NewRBPHandler(rbpSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func loadDirectory(path string) (*directory.StaticDirectory, error) {
	if strings.TrimSpace(path) == "" {
		return directory.Parse(fixtures.RoleDirectoryYAML())
	}
	return directory.LoadFile(path)
}
