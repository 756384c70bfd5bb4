package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/api/option"

	"github.com/dvloznov/smartbudget/internal/config"
	"github.com/dvloznov/smartbudget/internal/infra/bigquery"
	"github.com/dvloznov/smartbudget/internal/persistence/sqlite"
)

func main() {
	cfg := config.Load()

	var (
		sqlitePath = flag.String("sqlite-path", cfg.SQLitePath, "SQLite state database to migrate (or set SQLITE_PATH)")
		withBQ     = flag.Bool("bigquery", false, "Also create the BigQuery mirror table if missing")
		projectID  = flag.String("project", cfg.BigQueryProject, "GCP project ID for the mirror table")
		datasetID  = flag.String("dataset", cfg.BigQueryDataset, "BigQuery dataset ID")
		tableID    = flag.String("table", cfg.BigQueryTable, "BigQuery table ID")
	)
	flag.Parse()

	if *sqlitePath != "" {
		if err := os.MkdirAll(filepath.Dir(*sqlitePath), 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
		if err := sqlite.RunMigrations(*sqlitePath); err != nil {
			log.Fatalf("Failed to migrate %s: %v", *sqlitePath, err)
		}
		log.Printf("SQLite state database %s is up to date", *sqlitePath)
	}

	if !*withBQ {
		return
	}
	if *projectID == "" {
		log.Fatal("Error: -project flag is required with -bigquery. Please specify your GCP project ID.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var opts []option.ClientOption
	if cfg.GoogleCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleCredentials))
	}
	warehouse, err := bigquery.NewWarehouse(ctx, *projectID, *datasetID, *tableID, opts...)
	if err != nil {
		log.Fatalf("Failed to create BigQuery client: %v", err)
	}
	defer warehouse.Close()

	if err := warehouse.EnsureTable(ctx); err != nil {
		log.Fatalf("Failed to ensure mirror table: %v", err)
	}
	log.Printf("BigQuery table %s.%s.%s is ready", *projectID, *datasetID, *tableID)
}
