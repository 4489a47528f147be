package telemetry

import (
	"context"
	"time"
)

type contextKey string

const queryStartTimeKey contextKey = "query_start_time"

func contextWithQueryStart(ctx context.Context) context.Context {
	return context.WithValue(ctx, queryStartTimeKey, time.Now())
}
