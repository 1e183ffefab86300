package cmd

import (
	"fmt"

	"entity-sync/core/cassandra"
	"entity-sync/core/config"
	"entity-sync/core/database"
	"entity-sync/core/history"
	"entity-sync/core/logger"
	"entity-sync/core/mapping"
	"entity-sync/core/reconcile"
	"entity-sync/core/storage"
	"entity-sync/feature/schema"

	gocql "github.com/apache/cassandra-gocql-driver/v2"
	"go.uber.org/zap"
)

// runtime holds everything a command needs to reconcile.
type runtime struct {
	cfg         *config.Config
	logger      *zap.Logger
	session     *gocql.Session
	service     *schema.Service
	descriptors []*mapping.Descriptor
}

// bootstrap loads configuration and entities and connects to the cluster.
// The history store and the script publisher are optional.
func bootstrap(configure func(*config.Config)) (*runtime, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if configure != nil {
		configure(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	descriptors, err := mapping.LoadDescriptorFile(cfg.Schema.EntitiesFile)
	if err != nil {
		return nil, err
	}
	logg.Info("Loaded entity descriptors",
		zap.String("file", cfg.Schema.EntitiesFile),
		zap.Int("entities", len(descriptors)),
	)

	session, err := cassandra.Connect(cfg.Cassandra)
	if err != nil {
		return nil, err
	}
	logg = logg.With(zap.String("keyspace", cfg.Cassandra.Keyspace))

	engineOpts := []reconcile.EngineOption{
		reconcile.WithLogger(logg),
		reconcile.WithOptions(reconcile.Options{
			DropRemovedColumns: cfg.Schema.DropRemovedColumns,
			ShowStatements:     cfg.Schema.ShowStatements,
		}),
	}
	var serviceOpts []schema.Option

	if cfg.Database.Enabled {
		if db, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional history database connection failed", zap.Error(err))
		} else {
			store := history.NewStore(db)
			if err := store.Migrate(); err != nil {
				logg.Warn("History store unavailable", zap.Error(err))
			} else {
				engineOpts = append(engineOpts, reconcile.WithRecorder(store))
				serviceOpts = append(serviceOpts, schema.WithHistory(store))
				logg.Info("Recording schema changes", zap.String("database", cfg.Database.Name))
			}
		}
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			session.Close()
			return nil, err
		}
		serviceOpts = append(serviceOpts, schema.WithPublisher(
			schema.NewPublisher(client, cfg.Storage.Bucket, cfg.Schema.ArtifactPrefix)))
	}

	engine := reconcile.NewEngine(cassandra.NewTransport(session, cfg.Cassandra.Keyspace), engineOpts...)
	registry := mapping.NewRegistry(mapping.WithLogger(logg))

	return &runtime{
		cfg:         cfg,
		logger:      logg,
		session:     session,
		service:     schema.NewService(registry, engine, logg, serviceOpts...),
		descriptors: descriptors,
	}, nil
}

// Close releases the cluster session and flushes the logger.
func (r *runtime) Close() {
	r.session.Close()
	_ = r.logger.Sync()
}
