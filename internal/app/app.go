package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/gripinvest/internal/clients/gemini"
	"github.com/bobmcallan/gripinvest/internal/common"
	"github.com/bobmcallan/gripinvest/internal/interfaces"
	"github.com/bobmcallan/gripinvest/internal/services/advisor"
	"github.com/bobmcallan/gripinvest/internal/services/catalog"
	"github.com/bobmcallan/gripinvest/internal/services/dashboard"
	"github.com/bobmcallan/gripinvest/internal/services/insight"
	"github.com/bobmcallan/gripinvest/internal/services/investment"
	"github.com/bobmcallan/gripinvest/internal/services/portfolio"
	"github.com/bobmcallan/gripinvest/internal/services/profile"
	"github.com/bobmcallan/gripinvest/internal/services/txlog"
	"github.com/bobmcallan/gripinvest/internal/services/valuation"
	"github.com/bobmcallan/gripinvest/internal/storage"
)

// App holds all initialized services, clients and storage.
// It is the shared core behind cmd/gripinvest-server.
type App struct {
	Config       *common.Config
	Logger       *common.Logger
	Storage      interfaces.StorageManager
	GeminiClient *gemini.Client
	Insights     *insight.Delegator
	Valuation    valuation.Model

	CatalogService     *catalog.Service
	InvestmentService  interfaces.InvestmentService
	PortfolioService   interfaces.PortfolioService
	DashboardService   interfaces.DashboardService
	TransactionService interfaces.TransactionLogService
	AdvisorService     interfaces.AdvisorService
	ProfileService     interfaces.ProfileService

	StartupTime time.Time

	scheduler *cron.Cron
	logCloser io.Closer
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes everything. configPath may be
// empty, in which case GRIPINVEST_CONFIG, the binary directory and
// config/gripinvest.toml are tried in that order.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	if configPath == "" {
		configPath = os.Getenv("GRIPINVEST_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "gripinvest.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/gripinvest.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := common.NewLoggerFromConfig(config.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if missing := config.ValidateRequired(); len(missing) > 0 {
		if config.IsProduction() {
			if closer != nil {
				closer.Close()
			}
			return nil, fmt.Errorf("missing required configuration: %v", missing)
		}
		logger.Warn().Strs("settings", missing).Msg("Development defaults in use; set these before running in production")
	}

	a, err := New(config, logger)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	a.logCloser = closer
	return a, nil
}

// New wires the application from an already loaded config and logger.
func New(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()
	ctx := context.Background()

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var geminiClient *gemini.Client
	if key := config.Clients.Gemini.APIKey; key != "" {
		geminiClient, err = gemini.NewClient(ctx, key,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithFallbackModel(config.Clients.Gemini.FallbackModel),
			gemini.WithRateLimit(config.Clients.Gemini.RateLimit),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
			geminiClient = nil
		}
	} else {
		logger.Warn().Msg("Gemini API key not configured - generated text will use fallbacks")
	}

	// A nil *gemini.Client must not reach the delegator as a non-nil interface.
	var generator interfaces.TextGenerator
	if geminiClient != nil {
		generator = geminiClient
	}
	insights := insight.NewDelegator(generator, config.Clients.Gemini.GetTimeout(), logger)

	seed := config.Valuation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	model := valuation.New(config.Valuation.Model, seed)

	catalogService := catalog.NewService(storageManager, insights, logger)
	investmentService := investment.NewService(storageManager, time.Now, investment.Rules{
		CancellationWindow: config.Investment.GetCancellationWindow(),
	}, logger)

	a := &App{
		Config:             config,
		Logger:             logger,
		Storage:            storageManager,
		GeminiClient:       geminiClient,
		Insights:           insights,
		Valuation:          model,
		CatalogService:     catalogService,
		InvestmentService:  investmentService,
		PortfolioService:   portfolio.NewService(storageManager, model, time.Now, logger),
		DashboardService:   dashboard.NewService(storageManager, model, insights, logger),
		TransactionService: txlog.NewService(storageManager, insights, time.Now, logger),
		AdvisorService:     advisor.NewService(storageManager, insights, logger),
		ProfileService:     profile.NewService(storageManager, logger),
		StartupTime:        startupStart,
	}

	if config.Catalog.Seed {
		if n, err := catalogService.SeedDefaults(ctx); err != nil {
			logger.Warn().Err(err).Msg("Catalog seeding failed")
		} else if n > 0 {
			logger.Info().Int("products", n).Msg("Seeded default catalog")
		}
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close clients, close storage, close log file.
func (a *App) Close() {
	a.StopMaturityScheduler()
	if a.GeminiClient != nil {
		a.GeminiClient.Close()
		a.GeminiClient = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}
