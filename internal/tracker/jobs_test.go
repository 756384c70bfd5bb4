package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dvloznov/smartbudget/internal/advisory"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/jobs"
)

func TestRunJob(t *testing.T) {
	amount := 120.0
	advisor := &MockAdvisor{
		AnalyzeFinancesFunc: func(context.Context, []advisory.AnalysisEntry, float64) (*domain.AIAnalysisResult, error) {
			return &domain.AIAnalysisResult{FinancialHealthScore: 64}, nil
		},
		ExtractReceiptFunc: func(context.Context, []byte) (*domain.PartialTransaction, error) {
			return &domain.PartialTransaction{Amount: &amount, Description: "Farmacia"}, nil
		},
	}
	s, _ := newTestService(t, advisor)
	postOne(t, s)

	t.Run("analysis", func(t *testing.T) {
		job := &jobs.AdvisoryJob{JobID: "j1", Type: jobs.JobTypeAnalyzeFinances, SavingsGoal: 100}
		if err := s.RunJob(context.Background(), job); err != nil {
			t.Fatalf("RunJob() error = %v", err)
		}
		var got domain.AIAnalysisResult
		if err := json.Unmarshal(job.Result, &got); err != nil {
			t.Fatal(err)
		}
		if got.FinancialHealthScore != 64 {
			t.Errorf("score = %v, want 64", got.FinancialHealthScore)
		}
	})

	t.Run("receipt", func(t *testing.T) {
		job := &jobs.AdvisoryJob{JobID: "j2", Type: jobs.JobTypeExtractReceipt, Image: []byte{0xff}}
		if err := s.RunJob(context.Background(), job); err != nil {
			t.Fatalf("RunJob() error = %v", err)
		}
		var got domain.PartialTransaction
		if err := json.Unmarshal(job.Result, &got); err != nil {
			t.Fatal(err)
		}
		if got.Description != "Farmacia" || got.Type != domain.TransactionExpense {
			t.Errorf("draft = %+v", got)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if err := s.RunJob(context.Background(), &jobs.AdvisoryJob{Type: "parse_document"}); err == nil {
			t.Error("RunJob() with unknown type should fail")
		}
	})
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{advisory.ErrAdvisoryUnavailable, true},
		{ErrBusy, true},
		{advisory.ErrNoData, false},
		{advisory.ErrReceiptUnreadable, false},
		{errors.New("other"), false},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
