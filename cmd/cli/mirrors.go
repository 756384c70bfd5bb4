package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/dvloznov/smartbudget/internal/infra/bigquery"
	"github.com/dvloznov/smartbudget/internal/notionsync"
)

type exportBigQueryCmd struct {
	project string
	dataset string
	table   string
	dates   dateRange
}

func (*exportBigQueryCmd) Name() string     { return "export-bigquery" }
func (*exportBigQueryCmd) Synopsis() string { return "append new transactions to a BigQuery table" }
func (*exportBigQueryCmd) Usage() string {
	return `smartbudget export-bigquery [-project <id>] [-dataset <name>] [-table <name>] [-start-date <date>] [-end-date <date>]

  Inserts transactions that are not in the table yet. The table is created
  on first use. Defaults come from BIGQUERY_PROJECT, BIGQUERY_DATASET and
  BIGQUERY_TABLE.
`
}

func (c *exportBigQueryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.project, "project", "", "Google Cloud project. Overrides BIGQUERY_PROJECT.")
	f.StringVar(&c.dataset, "dataset", "", "Dataset name. Overrides BIGQUERY_DATASET.")
	f.StringVar(&c.table, "table", "", "Table name. Overrides BIGQUERY_TABLE.")
	f.StringVar(&c.dates.start, "start-date", "", "First transaction date to export (YYYY-MM-DD).")
	f.StringVar(&c.dates.end, "end-date", "", "Last transaction date to export (YYYY-MM-DD).")
}

func (c *exportBigQueryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	ctx, a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	project := firstNonEmpty(c.project, a.Config.BigQueryProject)
	if project == "" {
		fmt.Fprintln(os.Stderr, "Error: -project or BIGQUERY_PROJECT is required")
		return subcommands.ExitUsageError
	}
	txs, err := c.dates.filter(a.Service.Transactions())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	rows, err := bigquery.BuildRows(txs, a.Service.Accounts(), time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	warehouse, err := bigquery.NewWarehouse(ctx, project,
		firstNonEmpty(c.dataset, a.Config.BigQueryDataset),
		firstNonEmpty(c.table, a.Config.BigQueryTable),
		a.GoogleClientOptions()...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer warehouse.Close()

	res, err := bigquery.Export(ctx, warehouse, rows)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exported %d transactions (%d already present).\n", res.Exported, res.Skipped)
	return subcommands.ExitSuccess
}

type syncNotionCmd struct {
	token  string
	dbID   string
	dryRun bool
	dates  dateRange
}

func (*syncNotionCmd) Name() string     { return "sync-notion" }
func (*syncNotionCmd) Synopsis() string { return "mirror transactions into a Notion database" }
func (*syncNotionCmd) Usage() string {
	return `smartbudget sync-notion [-notion-token <token>] [-notion-db-id <id>] [-start-date <date>] [-end-date <date>] [-dry-run]

  Creates or updates one page per transaction and archives pages whose
  transaction no longer exists in the selected range.
`
}

func (c *syncNotionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.token, "notion-token", "", "Notion API token. Overrides NOTION_TOKEN.")
	f.StringVar(&c.dbID, "notion-db-id", "", "Notion database ID. Overrides NOTION_DB_ID.")
	f.BoolVar(&c.dryRun, "dry-run", false, "Dry run mode - preview changes without syncing")
	f.StringVar(&c.dates.start, "start-date", "", "First transaction date to sync (YYYY-MM-DD).")
	f.StringVar(&c.dates.end, "end-date", "", "Last transaction date to sync (YYYY-MM-DD).")
}

func (c *syncNotionCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	ctx, a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	token := firstNonEmpty(c.token, a.Config.NotionToken)
	dbID := firstNonEmpty(c.dbID, a.Config.NotionDBID)
	if token == "" || dbID == "" {
		fmt.Fprintln(os.Stderr, "Error: a Notion token and database id are required")
		return subcommands.ExitUsageError
	}
	txs, err := c.dates.filter(a.Service.Transactions())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	res, err := notionsync.SyncTransactions(ctx, notionsync.NewClient(token), dbID, txs, a.Service.Accounts(), c.dryRun)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Sync completed: %d created, %d updated, %d archived, %d failed.\n",
		res.Created, res.Updated, res.Deleted, res.Failed)
	if res.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
