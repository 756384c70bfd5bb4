package advisory

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/ledger"
	"github.com/dvloznov/smartbudget/internal/logger"
	"google.golang.org/genai"
)

const (
	DefaultAnalysisModel = "gemini-2.5-pro"
	DefaultReceiptModel  = "gemini-2.5-flash"
	DefaultPortraitModel = "gemini-2.5-flash-image"
)

// GeminiConfig selects credentials and models for GeminiGateway.
type GeminiConfig struct {
	APIKey        string
	AnalysisModel string
	ReceiptModel  string
	PortraitModel string
	Taxonomy      *ledger.Taxonomy
}

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGateway implements Gateway on the Gemini API.
type GeminiGateway struct {
	models contentGenerator
	cfg    GeminiConfig
}

// NewGeminiGateway creates a Gemini client for the given configuration.
func NewGeminiGateway(ctx context.Context, cfg GeminiConfig) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiGateway: create genai client: %w", err)
	}
	return newGeminiGateway(client.Models, cfg), nil
}

func newGeminiGateway(models contentGenerator, cfg GeminiConfig) *GeminiGateway {
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = DefaultAnalysisModel
	}
	if cfg.ReceiptModel == "" {
		cfg.ReceiptModel = DefaultReceiptModel
	}
	if cfg.PortraitModel == "" {
		cfg.PortraitModel = DefaultPortraitModel
	}
	if cfg.Taxonomy == nil {
		cfg.Taxonomy = ledger.DefaultTaxonomy
	}
	return &GeminiGateway{models: models, cfg: cfg}
}

// AnalyzeFinances implements Gateway.
func (g *GeminiGateway) AnalyzeFinances(ctx context.Context, entries []AnalysisEntry, savingsGoal float64) (*domain.AIAnalysisResult, error) {
	if len(entries) == 0 {
		return nil, ErrNoData
	}
	log := logger.FromContext(ctx)

	prompt, err := buildAnalysisPrompt(entries, savingsGoal)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeFinances: %v: %w", err, ErrAdvisoryUnavailable)
	}

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: advisorPersona}}},
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.models.GenerateContent(ctx, g.cfg.AnalysisModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeFinances: generate content: %v: %w", err, ErrAdvisoryUnavailable)
	}

	result, err := parseAnalysis(resp.Text())
	if err != nil {
		log.Warn().Err(err).Str("model", g.cfg.AnalysisModel).Msg("Discarding malformed analysis response")
		return nil, fmt.Errorf("AnalyzeFinances: %v: %w", err, ErrAdvisoryUnavailable)
	}

	log.Info().
		Int("transactions", len(entries)).
		Float64("health_score", result.FinancialHealthScore).
		Msg("Financial analysis received")

	return result, nil
}

// ExtractReceipt implements Gateway.
func (g *GeminiGateway) ExtractReceipt(ctx context.Context, image []byte) (*domain.PartialTransaction, error) {
	prepared, err := PrepareReceiptImage(image)
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildReceiptPrompt(g.cfg.Taxonomy)},
				{
					InlineData: &genai.Blob{
						MIMEType: receiptMIMEType,
						Data:     prepared,
					},
				},
			},
		},
	}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := g.models.GenerateContent(ctx, g.cfg.ReceiptModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: generate content: %v: %w", err, ErrAdvisoryUnavailable)
	}

	draft, err := parseReceipt(resp.Text(), g.cfg.Taxonomy)
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: %w", err)
	}
	return draft, nil
}

// GeneratePortrait implements Gateway. The image comes back as a data URL.
func (g *GeminiGateway) GeneratePortrait(ctx context.Context) (string, error) {
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: portraitPrompt}}},
	}
	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{AspectRatio: "1:1"},
	}

	resp, err := g.models.GenerateContent(ctx, g.cfg.PortraitModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("GeneratePortrait: generate content: %v: %w", err, ErrAdvisoryUnavailable)
	}

	blob := firstInlineData(resp)
	if blob == nil {
		return "", fmt.Errorf("GeneratePortrait: no image in response: %w", ErrAdvisoryUnavailable)
	}
	mime := blob.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(blob.Data), nil
}

func firstInlineData(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData
			}
		}
	}
	return nil
}

var _ Gateway = (*GeminiGateway)(nil)
