package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/infra"
	"server/internal/storage"
)

// The sweeper reconciles object storage with the product collection: objects
// under products/ that no document references and that are older than the
// grace window are deleted. Uploads and the database upsert are not
// transactional across the two systems, so a failed request can strand
// objects; this binary is the cleanup path.
func main() {
	dryRun := flag.Bool("dry-run", false, "report orphaned objects without deleting them")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.StorageBackend != "s3" {
		logger.Fatal().Str("backend", cfg.StorageBackend).Msg("sweeper: only the s3 backend is supported")
	}

	ctx := context.Background()
	client, err := infra.NewMongoClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: db connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: failed to configure storage")
	}

	products := repo.NewProductRepo(client.Database(cfg.MongoDatabase))
	referenced, err := products.ReferencedImageURLs(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: failed to list referenced urls")
	}

	objects, err := store.List(ctx, "products/")
	if err != nil {
		logger.Fatal().Err(err).Msg("sweeper: failed to list bucket objects")
	}

	grace := time.Duration(cfg.SweeperGraceHours) * time.Hour
	cutoff := time.Now().Add(-grace)

	var swept, kept int
	for _, obj := range objects {
		if _, ok := referenced[store.ObjectURL(obj.Key)]; ok {
			kept++
			continue
		}
		// Recent orphans may belong to an upload still in flight.
		if obj.LastModified.After(cutoff) {
			kept++
			continue
		}
		if *dryRun {
			logger.Info().Str("key", obj.Key).Time("last_modified", obj.LastModified).Msg("sweeper: would delete orphan")
			swept++
			continue
		}
		if err := store.Delete(ctx, obj.Key); err != nil {
			logger.Error().Err(err).Str("key", obj.Key).Msg("sweeper: delete failed")
			continue
		}
		logger.Info().Str("key", obj.Key).Msg("sweeper: deleted orphan")
		swept++
	}

	logger.Info().Int("objects", len(objects)).Int("kept", kept).Int("swept", swept).Bool("dry_run", *dryRun).Msg("sweeper: done")
}
