package notionsync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

// MockNotionService is a mock implementation of NotionService for testing.
type MockNotionService struct {
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePageFunc    func(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	QueryDatabaseFunc func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	DeletePageFunc    func(ctx context.Context, pageID string) error

	created []notionapi.Properties
	updated []string
	deleted []string
}

func (m *MockNotionService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, properties)
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	return &notionapi.Page{ID: notionapi.ObjectID(fmt.Sprintf("page-new-%d", len(m.created)))}, nil
}

func (m *MockNotionService) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.updated = append(m.updated, pageID)
	if m.UpdatePageFunc != nil {
		return m.UpdatePageFunc(ctx, pageID, properties)
	}
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *MockNotionService) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, filter)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (m *MockNotionService) DeletePage(ctx context.Context, pageID string) error {
	m.deleted = append(m.deleted, pageID)
	if m.DeletePageFunc != nil {
		return m.DeletePageFunc(ctx, pageID)
	}
	return nil
}

var _ NotionService = (*MockNotionService)(nil)

func notionPage(id, txID string) notionapi.Page {
	props := notionapi.Properties{}
	if txID != "" {
		props[propTransactionID] = &notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{PlainText: txID}},
		}
	}
	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}

func sampleTransactions() []domain.Transaction {
	return []domain.Transaction{
		{ID: "tx_1", Date: domain.NewDate(2025, time.May, 2), Amount: 10, Currency: currency.USD, Type: domain.TransactionExpense, Description: "Cine", AccountID: "acc_1"},
		{ID: "tx_2", Amount: 300, Currency: currency.UYU, Type: domain.TransactionIncome, Description: "Venta", AccountID: "acc_1"},
	}
}

func TestSyncTransactions(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{
				notionPage("page-1", "tx_1"),
				notionPage("page-dup", "tx_1"),
				notionPage("page-stale", "tx_gone"),
				notionPage("page-blank", ""),
			}}, nil
		},
	}
	accounts := []domain.Account{{ID: "acc_1", Name: "Caja"}}

	res, err := SyncTransactions(context.Background(), mock, "db", sampleTransactions(), accounts, false)
	if err != nil {
		t.Fatalf("SyncTransactions() error = %v", err)
	}

	want := Result{Created: 1, Updated: 1, Deleted: 3}
	if res != want {
		t.Errorf("SyncTransactions() = %+v, want %+v", res, want)
	}
	if len(mock.updated) != 1 || mock.updated[0] != "page-1" {
		t.Errorf("updated = %v, want [page-1]", mock.updated)
	}
	if len(mock.deleted) != 3 {
		t.Errorf("deleted = %v", mock.deleted)
	}
	account, ok := mock.created[0][propAccount].(notionapi.RichTextProperty)
	if !ok || account.RichText[0].Text.Content != "Caja" {
		t.Errorf("Account property = %+v, want Caja", mock.created[0][propAccount])
	}
}

func TestSyncTransactions_DryRun(t *testing.T) {
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{notionPage("page-stale", "tx_gone")}}, nil
		},
	}

	res, err := SyncTransactions(context.Background(), mock, "db", sampleTransactions(), nil, true)
	if err != nil {
		t.Fatalf("SyncTransactions() error = %v", err)
	}
	if res.Created != 2 || res.Deleted != 1 {
		t.Errorf("SyncTransactions() = %+v", res)
	}
	if len(mock.created)+len(mock.updated)+len(mock.deleted) != 0 {
		t.Error("dry run must not call write operations")
	}
}

func TestSyncTransactions_Failures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("query aborts", func(t *testing.T) {
		mock := &MockNotionService{
			QueryDatabaseFunc: func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
				return nil, boom
			},
		}
		if _, err := SyncTransactions(context.Background(), mock, "db", sampleTransactions(), nil, false); !errors.Is(err, boom) {
			t.Errorf("error = %v, want boom", err)
		}
	})

	t.Run("page failures are counted", func(t *testing.T) {
		mock := &MockNotionService{
			CreatePageFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
				return nil, boom
			},
		}
		res, err := SyncTransactions(context.Background(), mock, "db", sampleTransactions(), nil, false)
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if res.Failed != 2 || res.Created != 0 {
			t.Errorf("result = %+v, want 2 failures", res)
		}
	})
}

func TestQueryAllNotionPages_Pagination(t *testing.T) {
	calls := 0
	mock := &MockNotionService{
		QueryDatabaseFunc: func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			calls++
			if calls == 1 {
				if filter.StartCursor != "" {
					t.Errorf("first query has cursor %q", filter.StartCursor)
				}
				return &notionapi.DatabaseQueryResponse{
					Results:    []notionapi.Page{notionPage("p1", "tx_1")},
					HasMore:    true,
					NextCursor: "next",
				}, nil
			}
			if filter.StartCursor != "next" {
				t.Errorf("second query cursor = %q, want next", filter.StartCursor)
			}
			return &notionapi.DatabaseQueryResponse{Results: []notionapi.Page{notionPage("p2", "tx_2")}}, nil
		},
	}

	pages, err := queryAllNotionPages(context.Background(), mock, "db")
	if err != nil {
		t.Fatalf("queryAllNotionPages() error = %v", err)
	}
	if len(pages) != 2 || calls != 2 {
		t.Errorf("got %d pages in %d calls, want 2 in 2", len(pages), calls)
	}
}

func TestTransactionToNotionProperties(t *testing.T) {
	tx := sampleTransactions()[0]
	tx.Category = "Otros"

	props := TransactionToNotionProperties(tx, "")

	if n := props[propAmountUYU].(notionapi.NumberProperty).Number; n != 400 {
		t.Errorf("Amount UYU = %v, want 400", n)
	}
	if got := props[propCategory].(notionapi.SelectProperty).Select.Name; got != "Otros" {
		t.Errorf("Category = %q", got)
	}
	if _, ok := props[propSubcategory]; ok {
		t.Error("empty subcategory should be omitted")
	}
	if got := props[propAccount].(notionapi.RichTextProperty).RichText[0].Text.Content; got != "acc_1" {
		t.Errorf("Account = %q, want the account id fallback", got)
	}
	date := props[propDate].(notionapi.DateProperty).Date.Start
	if got := time.Time(*date).Format("2006-01-02"); got != "2025-05-02" {
		t.Errorf("Date = %s", got)
	}

	undated := TransactionToNotionProperties(sampleTransactions()[1], "Caja")
	if _, ok := undated[propDate]; ok {
		t.Error("zero date should be omitted")
	}
}
