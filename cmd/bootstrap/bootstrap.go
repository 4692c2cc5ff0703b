package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"dental-center/config"
	"dental-center/internal/domain/entity"
	"dental-center/internal/domain/repository"
	"dental-center/internal/infrastructure/cache"
	"dental-center/internal/infrastructure/database"
	"dental-center/internal/infrastructure/metrics"
	"dental-center/internal/infrastructure/storage"
	repositoryImpl "dental-center/internal/repository"
	"dental-center/internal/service"
	"dental-center/internal/usecase"
	"dental-center/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	FS          afero.Fs
	DB          *gorm.DB
	SQLite      *sql.DB
	RedisClient *redis.Client
	Registry    *prometheus.Registry
	Metrics     *metrics.StoreMetrics

	StateRepo   repository.StateRepository
	Persistence *service.PersistenceService
	Store       usecase.ClinicStore
	Dashboard   usecase.DashboardUsecase
}

// Options tune New; the zero value reads ".env" at info level
type Options struct {
	ConfigPath string
	Verbose    bool
}

// New creates a new App instance with all dependencies initialized and the store hydrated
func New(ctx context.Context, opts Options) (*App, error) {
	app := &App{FS: afero.NewOsFs()}

	// Load configuration
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.Log.Level, opts.Verbose)
	app.Log.Debug("Configuration loaded successfully")

	// Initialize the durable slot
	slot, err := app.newSlotRepository(ctx)
	if err != nil {
		app.closeClients()
		return nil, err
	}
	app.Log.Debugf("Using %s storage driver", cfg.Storage.Driver)

	app.Registry = prometheus.NewRegistry()
	storeMetrics := metrics.NewStoreMetrics(app.Registry)
	app.Metrics = storeMetrics

	// Initialize all layers
	customValidator := validator.NewValidator()
	app.StateRepo = repositoryImpl.NewStateRepository(slot, cfg.Storage.Key, app.Log, storeMetrics)
	app.Persistence = service.NewPersistenceService(app.StateRepo, app.Log)
	ingestor := service.NewFileIngestionService(cfg.Upload, app.Log, storeMetrics)
	app.Store = usecase.NewClinicStore(app.Log, app.StateRepo, app.Persistence, ingestor, customValidator,
		usecase.WithMetrics(storeMetrics),
	)
	app.Dashboard = usecase.NewDashboardUsecase(app.Store, cfg.Location(), nil)

	if err := app.Store.Hydrate(ctx); err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to hydrate store: %w", err)
	}

	recordSizes(storeMetrics, app.Store.Snapshot())
	app.Store.Subscribe(func(state *entity.AppState) {
		recordSizes(storeMetrics, state)
	})

	return app, nil
}

func recordSizes(m *metrics.StoreMetrics, state *entity.AppState) {
	files := 0
	for i := range state.Incidents {
		files += len(state.Incidents[i].Files)
	}
	m.Records.WithLabelValues("patients").Set(float64(len(state.Patients)))
	m.Records.WithLabelValues("incidents").Set(float64(len(state.Incidents)))
	m.Records.WithLabelValues("files").Set(float64(files))
}

// setupLogger configures the logrus logger.
// Logs go to stderr so command output on stdout stays machine readable.
func setupLogger(level string, verbose bool) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}

func (app *App) newSlotRepository(ctx context.Context) (repository.SlotRepository, error) {
	cfg := app.Config

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return repositoryImpl.NewFileSlotRepository(afero.NewMemMapFs(), "/"), nil

	case config.StorageDriverRedis:
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		return repositoryImpl.NewRedisSlotRepository(redisClient, cfg.Redis.KeyPrefix), nil

	case config.StorageDriverPostgres:
		db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Timezone)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db
		return repositoryImpl.NewPostgresSlotRepository(db)

	case config.StorageDriverSQLite:
		db, err := database.NewSQLiteConnection(cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		app.SQLite = db
		return repositoryImpl.NewSQLiteSlotRepository(db), nil

	case config.StorageDriverS3:
		client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return repositoryImpl.NewS3SlotRepository(client, cfg.S3.Bucket, cfg.S3.Prefix), nil

	default:
		if err := app.FS.MkdirAll(cfg.Storage.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create storage dir: %w", err)
		}
		return repositoryImpl.NewFileSlotRepository(app.FS, cfg.Storage.Dir), nil
	}
}

// Flush waits until every committed state has reached the durable slot
func (app *App) Flush(ctx context.Context) error {
	if app.Persistence == nil {
		return nil
	}
	return app.Persistence.Flush(ctx)
}

// Close drains pending writes and closes all connections (database, redis, etc.)
func (app *App) Close(ctx context.Context) {
	if app.Persistence != nil {
		if err := app.Persistence.Flush(ctx); err != nil {
			app.Log.Warnf("Failed to flush pending state: %+v", err)
		}
		app.Persistence.Stop()
	}

	app.logMetrics()
	app.closeClients()
}

func (app *App) closeClients() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.SQLite != nil {
		app.SQLite.Close()
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

// logMetrics writes the counters of this run at debug level
func (app *App) logMetrics() {
	if app.Registry == nil || !app.Log.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	families, err := app.Registry.Gather()
	if err != nil {
		app.Log.Warnf("Failed to gather metrics: %+v", err)
		return
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			fields := logrus.Fields{"metric": family.GetName()}
			for _, label := range m.GetLabel() {
				fields[label.GetName()] = label.GetValue()
			}
			value := m.GetCounter().GetValue()
			if m.GetGauge() != nil {
				value = m.GetGauge().GetValue()
			}
			app.Log.WithFields(fields).Debugf("%g", value)
		}
	}
}
