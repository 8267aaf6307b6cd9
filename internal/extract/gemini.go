package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"tally/internal/config"
	"tally/internal/logging"
	"tally/internal/services"
)

const extractionPrompt = `Read the attached invoice document and return its key fields.
Return amounts exactly as printed, with their decimal separator normalized to a dot
and no thousands separators. Use an empty string for anything you cannot read.`

// Gemini extracts invoice fields by sending the document to the Gemini API.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini builds a Gemini extractor from the extraction config.
func NewGemini(ctx context.Context, cfg config.Extraction, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "extract", "client", "initialize Gemini client", err)
	}
	return &Gemini{
		client:  client,
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  logging.NewComponentLogger(logger, "extract"),
	}, nil
}

// responseSchema pins the model to the JSON shape parseFields expects.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"issuer":         {Type: genai.TypeString, Description: "Name of the party that issued the invoice"},
			"invoice_number": {Type: genai.TypeString, Description: "Invoice number as printed"},
			"issued_on":      {Type: genai.TypeString, Description: "Issue date in YYYY-MM-DD form"},
			"currency":       {Type: genai.TypeString, Description: "ISO 4217 currency code"},
			"amount_total":   {Type: genai.TypeString, Description: "Gross total as a decimal string"},
			"amount_tax":     {Type: genai.TypeString, Description: "Tax portion as a decimal string"},
		},
	}
}

// Extract sends the document inline and parses the structured response.
func (g *Gemini) Extract(ctx context.Context, filename string, data []byte) (Fields, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: extractionPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeForFilename(filename), Data: data}},
		},
	}}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Fields{}, services.Wrap(services.ErrTimeout, "extract", "generate",
				fmt.Sprintf("extraction of %s timed out after %s", filename, g.timeout), err)
		}
		return Fields{}, services.Wrap(services.ErrExternalTool, "extract", "generate",
			fmt.Sprintf("extract fields from %s", filename), err)
	}

	text := resp.Text()
	if text == "" {
		return Fields{}, services.Wrap(services.ErrExternalTool, "extract", "generate",
			fmt.Sprintf("empty extraction response for %s", filename), nil)
	}

	fields, err := parseFields([]byte(text))
	if err != nil {
		return Fields{}, services.Wrap(services.ErrExternalTool, "extract", "parse",
			fmt.Sprintf("parse extraction response for %s", filename), err)
	}

	g.logger.Debug("invoice fields extracted",
		logging.String(logging.FieldFilename, filename),
		logging.String("issuer", fields.Issuer),
		logging.String("duration", time.Since(start).Round(time.Millisecond).String()),
	)
	return fields, nil
}
