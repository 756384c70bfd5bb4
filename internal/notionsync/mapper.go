package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
)

// Property names of the transactions database.
const (
	propDescription   = "Description"
	propTransactionID = "Transaction ID"
	propDate          = "Date"
	propAmount        = "Amount"
	propAmountUYU     = "Amount UYU"
	propCurrency      = "Currency"
	propType          = "Type"
	propCategory      = "Category"
	propSubcategory   = "Subcategory"
	propAccount       = "Account"
)

// TransactionToNotionProperties converts a ledger transaction to page
// properties. accountName may be empty when the account was removed.
func TransactionToNotionProperties(tx domain.Transaction, accountName string) notionapi.Properties {
	props := notionapi.Properties{
		propDescription: notionapi.TitleProperty{
			Title: richText(tx.Description),
		},
		propTransactionID: notionapi.RichTextProperty{
			RichText: richText(tx.ID),
		},
		propAmount: notionapi.NumberProperty{Number: tx.Amount},
		propCurrency: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Currency)},
		},
		propType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(tx.Type)},
		},
	}

	if !tx.Date.IsZero() {
		d := notionapi.Date(time.Date(tx.Date.Year, tx.Date.Month, tx.Date.Day, 0, 0, 0, 0, time.UTC))
		props[propDate] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &d},
		}
	}

	// Skipped for unknown currencies rather than failing the whole page.
	if uyu, err := currency.Convert(tx.Amount, tx.Currency, currency.Reporting); err == nil {
		props[propAmountUYU] = notionapi.NumberProperty{Number: uyu}
	}

	if tx.Category != "" {
		props[propCategory] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.Category},
		}
	}
	if tx.SubCategory != "" {
		props[propSubcategory] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: tx.SubCategory},
		}
	}

	account := accountName
	if account == "" {
		account = tx.AccountID
	}
	if account != "" {
		props[propAccount] = notionapi.RichTextProperty{RichText: richText(account)}
	}

	return props
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}
