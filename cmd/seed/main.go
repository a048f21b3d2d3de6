// Command seed migrates the PostgreSQL schema and loads the demo catalog,
// clients and sales.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"retail-desk/internal/config"
	"retail-desk/internal/database"
	"retail-desk/internal/gateway"
	"retail-desk/internal/logger"
	"retail-desk/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	// Variables already set in the environment win over the file
	if err := godotenv.Load(*envFile); err != nil {
		fmt.Printf("Warning: could not load %s: %v\n", *envFile, err)
	}

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer dbService.Close()

	db := dbService.DB()
	if err := database.RunMigrations(db, cfg.Server.MigrationsDir, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	gw := gateway.NewPostgres(
		repository.NewClientRepository(db),
		repository.NewProductRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewSaleRepository(db),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	data := gateway.DemoDataset(time.Now())
	if err := gateway.Seed(ctx, gw, data); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	log.Info("Database seeded",
		zap.Int("categories", len(data.Categories)),
		zap.Int("clients", len(data.Clients)),
		zap.Int("products", len(data.Products)),
		zap.Int("sales", len(data.Sales)),
	)
}
