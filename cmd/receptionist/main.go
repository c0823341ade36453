package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/suteetoe/receptionist/internal/service"
	"github.com/suteetoe/receptionist/internal/store"
	"github.com/suteetoe/receptionist/internal/tenant"
	"github.com/suteetoe/receptionist/pkg/config"
	"github.com/suteetoe/receptionist/pkg/database"
	"github.com/suteetoe/receptionist/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "receptionist"

func main() {
	rootCmd := &cobra.Command{
		Use:   serviceName,
		Short: "Tenant configuration and prompt composition service for the AI receptionist",
		Long: `receptionist keeps each tenant's versioned company profile, agent settings,
knowledge documents and prompt templates, and composes the system prompt
handed to the language model.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newTemplatesCmd())
	rootCmd.AddCommand(newPromptCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds the components shared by every command
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	db        *gorm.DB
	tenants   *tenant.Resolver
	profiles  *store.CompanyProfileStore
	agents    *store.AgentConfigStore
	knowledge *store.KnowledgeRepository
	templates *store.TemplateRegistry
	prompts   *service.PromptService
}

// bootstrap loads configuration, initializes the logger and opens the database
func bootstrap() (*app, error) {
	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")

	a := &app{
		cfg:       cfg,
		log:       log,
		db:        db,
		tenants:   tenant.NewResolver(db, cfg.Tenant),
		profiles:  store.NewCompanyProfileStore(db),
		agents:    store.NewAgentConfigStore(db),
		knowledge: store.NewKnowledgeRepository(db),
		templates: store.NewTemplateRegistry(db),
	}
	a.prompts = service.NewPromptService(a.tenants, a.profiles, a.agents, a.knowledge, a.templates)
	return a, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Migrate(a.db); err != nil {
				a.log.Error("Migration failed", zap.Error(err))
				return err
			}
			a.log.Info("Database migrated")
			return nil
		},
	}
}
