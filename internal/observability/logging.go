package observability

import (
	"context"
	"log/slog"
)

// LogAsyncOperationError logs a failed side effect that must not fail the caller,
// such as a notification, realtime event or email emitted after a commit.
func LogAsyncOperationError(ctx context.Context, operation string, err error, attrs ...slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+3)
	all = append(all,
		slog.String("operation", operation),
		slog.String("type", "async_error"),
		slog.String("error", err.Error()),
	)
	all = append(all, attrs...)
	slog.Default().LogAttrs(ctx, slog.LevelError, "async operation failed", all...)
}
