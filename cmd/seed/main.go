// Command seed replaces the product catalog with the contents of a JSON file.
//
//	go run ./cmd/seed -file product.json
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/lumenhair/storefront-api/internal/infrastructure/db/mongo"
	"github.com/lumenhair/storefront-api/internal/infrastructure/seed"
	"github.com/lumenhair/storefront-api/internal/pkg/config"
	"github.com/lumenhair/storefront-api/pkg/logger"
)

func main() {
	file := flag.String("file", "product.json", "path to the products JSON array")
	flag.Parse()

	ctx := context.Background()
	log := logger.Init(logger.Options{Pretty: true, Service: "storefront-seed"})

	cfg, err := config.LoadMongo(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("failed to open products file")
	}
	defer f.Close()

	products, err := seed.DecodeProducts(f, time.Now().UTC())
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("invalid products file")
	}

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.URI, Database: cfg.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer client.Disconnect(ctx)

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongodb indexes")
	}

	n, err := mongo.NewProductRepository(db).ReplaceAll(ctx, products)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load products")
	}
	log.Info().Int("products", n).Str("database", cfg.Database).Msg("catalog replaced")
}
