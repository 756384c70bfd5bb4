package main

import (
	"flag"
	"testing"
	"time"

	"github.com/google/subcommands"

	"github.com/dvloznov/smartbudget/internal/domain"
)

func TestDateRangeFilter(t *testing.T) {
	txs := []domain.Transaction{
		{ID: "jan", Date: domain.NewDate(2025, time.January, 31)},
		{ID: "feb", Date: domain.NewDate(2025, time.February, 1)},
		{ID: "mar", Date: domain.NewDate(2025, time.March, 15)},
	}

	tests := []struct {
		name    string
		r       dateRange
		want    []string
		wantErr bool
	}{
		{"open", dateRange{}, []string{"jan", "feb", "mar"}, false},
		{"start inclusive", dateRange{start: "2025-02-01"}, []string{"feb", "mar"}, false},
		{"end inclusive", dateRange{end: "2025-02-01"}, []string{"jan", "feb"}, false},
		{"closed", dateRange{start: "2025-02-01", end: "2025-02-28"}, []string{"feb"}, false},
		{"bad start", dateRange{start: "01/02/2025"}, nil, true},
		{"reversed", dateRange{start: "2025-03-01", end: "2025-02-01"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.r.filter(txs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("filter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("filter() returned %d transactions, want %d", len(got), len(tt.want))
			}
			for i, tx := range got {
				if tx.ID != tt.want[i] {
					t.Errorf("filter()[%d] = %s, want %s", i, tx.ID, tt.want[i])
				}
			}
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "env", "default"); got != "env" {
		t.Errorf("firstNonEmpty() = %q, want env", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}

func TestRegister(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("smartbudget", flag.ContinueOnError), "smartbudget")
	register(commander)

	seen := map[string]bool{}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		seen[c.Name()] = true
	})
	for _, name := range []string{"summary", "analysis", "export", "import", "export-bigquery", "sync-notion"} {
		if !seen[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}
