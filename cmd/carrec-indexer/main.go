package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/taimoorKVD/car-recommendation-apis/internal/config"
	dbRedis "github.com/taimoorKVD/car-recommendation-apis/internal/db/redis"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	domveh "github.com/taimoorKVD/car-recommendation-apis/internal/domain/vehicle"
	logpkg "github.com/taimoorKVD/car-recommendation-apis/internal/logger"
	"github.com/taimoorKVD/car-recommendation-apis/internal/metrics"
	"github.com/taimoorKVD/car-recommendation-apis/internal/repository/embcache"
	eventrepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/event"
	uservecrepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/uservector"
	vehiclerepo "github.com/taimoorKVD/car-recommendation-apis/internal/repository/vehicle"
	openaiProv "github.com/taimoorKVD/car-recommendation-apis/internal/transport/openai"
	prefvectoruc "github.com/taimoorKVD/car-recommendation-apis/internal/usecase/prefvector"
)

// catalogVehicle is the YAML shape of one catalog entry.
type catalogVehicle struct {
	ID             string  `yaml:"id"`
	Brand          string  `yaml:"brand"`
	Model          string  `yaml:"model"`
	Type           string  `yaml:"type"`
	Price          float64 `yaml:"price"`
	FamilyFriendly bool    `yaml:"family_friendly"`
	Description    string  `yaml:"description"`
}

func main() {
	catalogPath := flag.String("catalog", "", "path to a YAML catalog file to embed and index")
	rebuildUser := flag.Int64("rebuild-user", 0, "rebuild the preference vector for this user from event history")
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if *catalogPath == "" && *rebuildUser == 0 {
		logger.Fatal("Nothing to do: pass -catalog or -rebuild-user")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterProviderMetrics()

	base := openaiProv.NewEmbedder(&openaiProv.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	var embedder domain.Embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)

	if *catalogPath != "" {
		if err := indexCatalog(ctx, *catalogPath, store, embedder, cfg, logger); err != nil {
			logger.Fatal("Catalog indexing failed", zap.Error(err))
		}
	}

	if *rebuildUser != 0 {
		prefSvc := prefvectoruc.New(
			uservecrepo.New(store), eventrepo.New(store),
			embedder, cfg.Recommend.PrefDecay, logger,
		).WithVehicles(vehiclerepo.New(store, cfg.Embedding.Dimensions))
		if err := prefSvc.Rebuild(ctx, *rebuildUser); err != nil {
			logger.Fatal("Preference vector rebuild failed",
				zap.Int64("user_id", *rebuildUser), zap.Error(err))
		}
		logger.Info("Preference vector rebuilt", zap.Int64("user_id", *rebuildUser))
	}
}

func indexCatalog(
	ctx context.Context,
	path string,
	store *dbRedis.Store,
	embedder domain.Embedder,
	cfg config.Config,
	logger *zap.Logger,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries []catalogVehicle
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return err
	}

	repo := vehiclerepo.New(store, cfg.Embedding.Dimensions)
	if err := repo.EnsureIndex(ctx); err != nil {
		return err
	}

	for _, e := range entries {
		v := domveh.Vehicle{
			ID:             e.ID,
			Brand:          e.Brand,
			Model:          e.Model,
			Type:           e.Type,
			Price:          e.Price,
			FamilyFriendly: e.FamilyFriendly,
			Description:    e.Description,
		}
		result, err := embedder.Embed(ctx, v.EmbeddingText())
		if err != nil {
			return err
		}
		if err := repo.Upsert(ctx, v, result.Embedding); err != nil {
			return err
		}
		logger.Info("Indexed vehicle",
			zap.String("id", v.ID),
			zap.String("type", v.Type),
		)
	}

	logger.Info("Catalog indexed", zap.Int("vehicles", len(entries)))
	return nil
}
