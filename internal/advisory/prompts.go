package advisory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/smartbudget/internal/currency"
	"github.com/dvloznov/smartbudget/internal/ledger"
)

// advisorPersona is the system instruction for the analysis model.
var advisorPersona = fmt.Sprintf(
	"Sos Rocío, una asesora financiera uruguaya, cálida y directa. Hablás en español rioplatense "+
		"(voseo, \"che\", \"bo\"), sin perder precisión con los números.\n"+
		"Todos los montos que recibís están en pesos uruguayos (UYU). El tipo de cambio fijo es "+
		"1 USD = %.0f UYU.\n"+
		"Analizás el historial de gastos e ingresos, proyectás el gasto del próximo mes, "+
		"puntuás la salud financiera de 0 a 100 y proponés un presupuesto por categoría.\n"+
		"Respondé SIEMPRE con JSON válido y nada más.",
	currency.ExchangeRate,
)

const analysisSchema = `Devolvé un único objeto JSON con esta forma exacta:
{
  "monthlyPrediction": number,
  "financialHealthScore": number (0 a 100),
  "summary": string,
  "topSavingsOpportunities": [{"title": string, "description": string, "estimatedSavings": number}],
  "suggestedBudget": [{"category": string, "suggestedLimit": number, "reasoning": string, "priority": "high" | "medium" | "low"}],
  "savingsGoalFeedback": {"isPossible": boolean, "verdict": string, "steps": [string]}
}
Todos los montos en UYU.`

// buildAnalysisPrompt serializes the normalized history and savings goal.
func buildAnalysisPrompt(entries []AnalysisEntry, savingsGoal float64) (string, error) {
	payload, err := json.Marshal(struct {
		Transactions []AnalysisEntry `json:"transactions"`
		SavingsGoal  float64         `json:"savingsGoalUYU"`
	}{entries, savingsGoal})
	if err != nil {
		return "", fmt.Errorf("buildAnalysisPrompt: marshal payload: %w", err)
	}

	var b strings.Builder
	b.WriteString("Analizá estas finanzas personales.\n")
	fmt.Fprintf(&b, "Meta de ahorro mensual: %.2f UYU. Decí si es alcanzable y cómo llegar.\n\n", savingsGoal)
	b.WriteString(analysisSchema)
	b.WriteString("\n\nDatos:\n")
	b.Write(payload)
	return b.String(), nil
}

// buildReceiptPrompt asks for the fields of a single purchase.
func buildReceiptPrompt(taxonomy *ledger.Taxonomy) string {
	var b strings.Builder
	b.WriteString("Sos un lector de tickets y facturas de Uruguay. Extraé la compra de la imagen adjunta.\n\n")
	b.WriteString("Devolvé un único objeto JSON con estos campos:\n")
	b.WriteString("- \"amount\": number, el total pagado\n")
	b.WriteString("- \"currency\": \"UYU\" o \"USD\"\n")
	b.WriteString("- \"description\": string, comercio o concepto\n")
	b.WriteString("- \"category\": string\n")
	b.WriteString("- \"subCategory\": string\n")
	b.WriteString("- \"date\": string, formato \"YYYY-MM-DD\"\n\n")
	b.WriteString(taxonomy.Prompt())
	b.WriteString("Si no podés leer un campo, omitilo.\n")
	b.WriteString("Devolvé SOLO JSON crudo, sin bloques de código ni texto extra.\n")
	return b.String()
}

const portraitPrompt = "Retrato ilustrado, cálido y amigable de Rocío, una asesora financiera uruguaya " +
	"de unos treinta años, pelo castaño ondulado, sonrisa cercana, con un mate en la mano y una flor " +
	"rosada en el pelo. Fondo suave en tonos pastel, estilo ilustración digital, encuadre de busto."
