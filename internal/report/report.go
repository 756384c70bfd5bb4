// Package report renders ledger summaries and the cached analysis as
// markdown for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/tracker"
)

// Summary renders the dashboard: net worth, debts, accounts and recent
// activity.
func Summary(d tracker.Dashboard, accounts []domain.Account) (string, error) {
	var b strings.Builder

	uyu, err := currency.Format(d.NetWorth.UYU, currency.UYU)
	if err != nil {
		return "", fmt.Errorf("Summary: %w", err)
	}
	usd, err := currency.Format(d.NetWorth.USD, currency.USD)
	if err != nil {
		return "", fmt.Errorf("Summary: %w", err)
	}
	toPay, _ := currency.Format(d.DebtsToPay, currency.Reporting)
	toCollect, _ := currency.Format(d.DebtsToCollect, currency.Reporting)

	b.WriteString("# Resumen\n\n")
	fmt.Fprintf(&b, "**Patrimonio:** %s (%s)\n\n", uyu, usd)
	fmt.Fprintf(&b, "- Deudas por pagar: %s\n", toPay)
	fmt.Fprintf(&b, "- Deudas por cobrar: %s\n\n", toCollect)

	if len(accounts) > 0 {
		b.WriteString("## Cuentas\n\n| Cuenta | Saldo |\n|---|---:|\n")
		for _, acc := range accounts {
			fmt.Fprintf(&b, "| %s | %s |\n", escape(acc.Name), money(acc.Balance, acc.Currency))
		}
		b.WriteString("\n")
	}

	if len(d.Recent) > 0 {
		b.WriteString("## Movimientos recientes\n\n| Fecha | Descripción | Categoría | Monto |\n|---|---|---|---:|\n")
		for _, tx := range d.Recent {
			amount := money(tx.Amount, tx.Currency)
			if tx.Type == domain.TransactionExpense {
				amount = "-" + amount
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", tx.Date, escape(tx.Description), escape(tx.Category), amount)
		}
		b.WriteString("\n")
	}

	if len(d.PaidDebts) > 0 {
		b.WriteString("## Deudas saldadas\n\n")
		for _, debt := range d.PaidDebts {
			fmt.Fprintf(&b, "- %s: %s\n", escape(debt.ContactName), money(debt.Amount, debt.Currency))
		}
	}

	return b.String(), nil
}

// Analysis renders an advisory snapshot. A nil result renders a hint to
// request one.
func Analysis(a *domain.AIAnalysisResult) string {
	if a == nil {
		return "# Análisis\n\nTodavía no hay un análisis. Pedile uno a Rocío con `smartbudget analysis -request`.\n"
	}

	var b strings.Builder
	b.WriteString("# Análisis de Rocío\n\n")
	fmt.Fprintf(&b, "**Salud financiera:** %.0f/100\n\n", a.FinancialHealthScore)
	fmt.Fprintf(&b, "**Gasto previsto del mes:** %s\n\n", money(a.MonthlyPrediction, currency.Reporting))
	fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(a.Summary, "\n", "\n> "))

	if len(a.TopSavingsOpportunities) > 0 {
		b.WriteString("## Oportunidades de ahorro\n\n")
		for _, o := range a.TopSavingsOpportunities {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", o.Title, money(o.EstimatedSavings, currency.Reporting), o.Description)
		}
		b.WriteString("\n")
	}

	if len(a.SuggestedBudget) > 0 {
		b.WriteString("## Presupuesto sugerido\n\n| Categoría | Límite | Prioridad | Motivo |\n|---|---:|---|---|\n")
		for _, s := range a.SuggestedBudget {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", escape(s.Category), money(s.SuggestedLimit, currency.Reporting), s.Priority, escape(s.Reasoning))
		}
		b.WriteString("\n")
	}

	if fb := a.SavingsGoalFeedback; fb != nil {
		verdict := "No parece posible todavía"
		if fb.IsPossible {
			verdict = "Es posible"
		}
		fmt.Fprintf(&b, "## Meta de ahorro\n\n**%s.** %s\n\n", verdict, fb.Verdict)
		for i, step := range fb.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}

	return b.String()
}

// Render styles markdown for a terminal. style is a glamour standard style
// name such as "dark", "light" or "notty".
func Render(md, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("Render: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("Render: %w", err)
	}
	return out, nil
}

// money formats amount, falling back to a plain number for unknown codes.
func money(amount float64, c currency.Code) string {
	s, err := currency.Format(amount, c)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, c)
	}
	return s
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
