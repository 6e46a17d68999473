package main

import (
	"fmt"
	"os"

	"wheelfinder/config"
	"wheelfinder/models"
	"wheelfinder/scraper"
	"wheelfinder/scraper/honda"
	"wheelfinder/scraper/toyota"
	"wheelfinder/services"
	"wheelfinder/storage"
	"wheelfinder/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("=== WheelFinder inventory pipeline starting ===")
	logger.Info("Config — concurrency: %d | rate: %dms | retries: %d",
		cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries)

	invWriter, err := storage.NewInventoryWriter(cfg.InventoryCSVPath)
	if err != nil {
		logger.Error("Failed to create inventory CSV writer: %v", err)
		os.Exit(1)
	}
	defer invWriter.Close()

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pgWriter.Close()

	// Both scrapers share one browser session, used one brand at a time.
	allocCtx, cancelAlloc := scraper.NewAllocator(cfg)
	defer cancelAlloc()

	hondaRecords, err := honda.New(cfg, logger).Scrape(allocCtx)
	if err != nil {
		logger.Error("Honda scrape failed: %v", err)
	}
	writeBrandCSV(logger, cfg.HondaCSVPath, hondaRecords)

	toyotaRecords, err := toyota.New(cfg, logger).Scrape(allocCtx)
	if err != nil {
		logger.Error("Toyota scrape failed: %v", err)
	}
	writeBrandCSV(logger, cfg.ToyotaCSVPath, toyotaRecords)

	if len(hondaRecords)+len(toyotaRecords) == 0 {
		logger.Error("No records were scraped. Exiting.")
		os.Exit(1)
	}

	merger := services.NewMerger(logger, nil)
	inventory, err := merger.Merge(hondaRecords, toyotaRecords)
	if err != nil {
		logger.Error("Merge failed: %v", err)
		os.Exit(1)
	}

	if err := invWriter.WriteInventory(inventory); err != nil {
		logger.Error("Inventory CSV write failed: %v", err)
	} else {
		logger.Info("Canonical inventory saved to %s", cfg.InventoryCSVPath)
	}

	if err := pgWriter.Write(inventory); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
	} else {
		logger.Info("Inventory stored in PostgreSQL (table: inventory)")
	}

	dbInventory, err := pgWriter.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch inventory from DB for ranking: %v", err)
		dbInventory = inventory
	}

	ranker := services.NewRanker(logger)
	recs, err := ranker.Rank(dbInventory, cfg.Preference())
	if err != nil {
		logger.Error("Ranking failed: %v", err)
		os.Exit(1)
	}
	ranker.Print(recs)

	fmt.Printf("  Done. Inventory CSV → %s | Clean data → PostgreSQL (inventory table)\n\n",
		cfg.InventoryCSVPath)
}

// writeBrandCSV dumps a raw per-brand table; a dump failure is logged but
// never stops the batch.
func writeBrandCSV(logger *utils.Logger, path string, records []*models.VehicleRecord) {
	if len(records) == 0 {
		return
	}
	w, err := storage.NewBrandWriter(path)
	if err != nil {
		logger.Error("Failed to create brand CSV writer for %s: %v", path, err)
		return
	}
	defer w.Close()

	if err := w.WriteRecords(records); err != nil {
		logger.Error("Brand CSV write failed for %s: %v", path, err)
		return
	}
	logger.Info("Raw brand table saved to %s", path)
}
