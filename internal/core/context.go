package core

import "context"

type contextKey string

const ctxKeyTrigger contextKey = "run_trigger"

// Trigger names what started a run.
const (
	TriggerCLI       = "cli"
	TriggerHTTP      = "http"
	TriggerScheduler = "scheduler"
)

// ContextWithTrigger records what started the run.
func ContextWithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, ctxKeyTrigger, trigger)
}

// TriggerFromContext returns the run trigger, or "" when unset.
func TriggerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTrigger).(string); ok {
		return v
	}
	return ""
}
