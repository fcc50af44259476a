package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"reviewhub/database"
	"reviewhub/internal/config"
	"reviewhub/internal/importer"
)

func main() {
	dir := flag.String("dir", "", "directory with CSV seed files (defaults to CSV_DATA_PATH)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	path := cfg.CSVDataPath
	if *dir != "" {
		path = *dir
	}

	if err := importer.New(db, logger).Run(path); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	logger.Info("import_complete", "dir", path)
}
