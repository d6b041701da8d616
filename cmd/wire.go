package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	apiclient "github.com/bnema/teamsync-cli/internal/adapters/api"
	"github.com/bnema/teamsync-cli/internal/adapters/netcheck"
	statusadapter "github.com/bnema/teamsync-cli/internal/adapters/render/status"
	"github.com/bnema/teamsync-cli/internal/adapters/store/sqlite"
	"github.com/bnema/teamsync-cli/internal/adapters/tokens"
	"github.com/bnema/teamsync-cli/internal/application"
	"github.com/bnema/teamsync-cli/internal/ports"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".teamsync"

	baseURLKey           = "api.base_url"
	networkModeKey       = "network.mode"
	trustedInterfacesKey = "network.trusted_interfaces"
	storagePathKey       = "storage.path"
	tokensPathKey        = "tokens.path"
	syncIntervalKey      = "sync.interval"
	logLevelKey          = "log.level"
)

type app struct {
	store          *sqlite.Store
	tokens         *tokens.Store
	api            *apiclient.Client
	net            *netcheck.Checker
	coordinator    *application.Coordinator
	reconciler     *application.Reconciler
	statusRenderer func([]application.TeamStatus, statusadapter.RenderOptions) (string, error)
	syncInterval   time.Duration
	logger         *log.Logger
	now            func() time.Time
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	teamsyncDir := filepath.Join(homeDir, configDir)

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(teamsyncDir)
	cfg.SetDefault(baseURLKey, "http://localhost:3000/api")
	cfg.SetDefault(networkModeKey, string(netcheck.ModeAuto))
	cfg.SetDefault(trustedInterfacesKey, netcheck.DefaultTrustedPrefixes)
	cfg.SetDefault(storagePathKey, filepath.Join(teamsyncDir, "teamsync.db"))
	cfg.SetDefault(tokensPathKey, filepath.Join(teamsyncDir, "tokens.toml"))
	cfg.SetDefault(syncIntervalKey, "5m")
	cfg.SetDefault(logLevelKey, "warn")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	logger := newLogger(envOrDefault("TEAMSYNC_LOG_LEVEL", cfg.GetString(logLevelKey)))

	rawMode := envOrDefault("TEAMSYNC_NETWORK_MODE", cfg.GetString(networkModeKey))
	mode, ok := netcheck.ParseMode(rawMode)
	if !ok {
		return nil, fmt.Errorf("invalid network mode %q (want auto, online or offline)", rawMode)
	}
	checker := netcheck.New(mode, cfg.GetStringSlice(trustedInterfacesKey), logger)

	storagePath := cfg.GetString(storagePathKey)
	if err := os.MkdirAll(filepath.Dir(storagePath), 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	store, err := sqlite.Open(context.Background(), storagePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	tokenStore := tokens.NewStore(cfg.GetString(tokensPathKey))

	baseURL := envOrDefault("TEAMSYNC_API_BASE_URL", cfg.GetString(baseURLKey))
	client := apiclient.NewClient(baseURL, tokenStore, http.DefaultTransport, logger)

	syncInterval := cfg.GetDuration(syncIntervalKey)
	if syncInterval <= 0 {
		return nil, fmt.Errorf("invalid sync interval %q", cfg.GetString(syncIntervalKey))
	}

	return &app{
		store:          store,
		tokens:         tokenStore,
		api:            client,
		net:            checker,
		coordinator:    application.NewCoordinator(store, client, checker, ports.SystemClock{}, logger),
		reconciler:     application.NewReconciler(store, client, checker, logger),
		statusRenderer: statusadapter.Render,
		syncInterval:   syncInterval,
		logger:         logger,
		now:            time.Now,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})
	if parsed, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}
	return logger
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
