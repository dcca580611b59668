package bus

import (
	"context"
	"log/slog"
	"time"

	"bookline.app/core/internal/domain"
)

// Logging logs every dispatched event with its fan-out duration.
func Logging() Middleware {
	return func(ctx context.Context, evt domain.Event, next func(ctx context.Context)) {
		start := time.Now()
		next(ctx)
		slog.InfoContext(ctx, "event dispatched",
			"event", evt.EventName(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
