package browserprocess

import (
	"context"
)

type ctxKey int

const (
	ctxKeyExecutionID ctxKey = iota
)

// WithExecutionID saves the current test execution ID to the context.
func WithExecutionID(ctx context.Context, eID string) context.Context {
	return context.WithValue(ctx, ctxKeyExecutionID, eID)
}

// GetExecutionID returns the current test execution ID from the context.
func GetExecutionID(ctx context.Context) string {
	eID, _ := ctx.Value(ctxKeyExecutionID).(string)
	return eID
}
