package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/providers/describe"
	"server/internal/service"
	"server/internal/storage"
	"server/internal/watermark"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	client, err := infra.NewMongoClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	products := repo.NewProductRepo(client.Database(cfg.MongoDatabase))
	if err := products.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	store, storageDir, err := newObjectStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure object storage")
	}

	describer, err := describe.NewOpenAIDescriber(describe.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure description generator")
	}

	compositor, err := watermark.NewCompositor(cfg.WatermarkTemplate)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load watermark template")
	}

	uploader := service.NewUploader(service.UploaderOptions{
		Products:   products,
		Store:      store,
		Describer:  describer,
		Compositor: compositor,
		Logger:     logger,
	})

	app := handlers.NewApp(logger, products, uploader)
	router := httpapi.NewRouter(app, logger, cfg.AllowedOrigins, cfg.PublicDir, storageDir)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newObjectStore selects the storage backend. The second return value is the
// local directory to expose under /static, empty for S3.
func newObjectStore(ctx context.Context, cfg *infra.Config) (domain.ObjectStore, string, error) {
	if cfg.StorageBackend == "filesystem" {
		store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.StoragePath, nil
	}
	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, "", err
	}
	return store, "", nil
}
