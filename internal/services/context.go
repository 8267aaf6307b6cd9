package services

import "context"

type contextKey string

const (
	runIDKey       contextKey = "run_id"
	invoiceHashKey contextKey = "invoice_hash"
	stageKey       contextKey = "stage"
)

// WithRunID annotates context with the reconciliation run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithInvoiceHash annotates context with the content hash of the invoice being
// processed.
func WithInvoiceHash(ctx context.Context, hash string) context.Context {
	if hash == "" {
		return ctx
	}
	return context.WithValue(ctx, invoiceHashKey, hash)
}

// InvoiceHashFromContext extracts the invoice content hash if present.
func InvoiceHashFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(invoiceHashKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
