package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// bookScoped is implemented by request messages that address a single book.
type bookScoped interface {
	GetBookId() int64
}

// rentalResult is implemented by response messages that carry a rental ID.
type rentalResult interface {
	GetRentalId() int64
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Besides procedure, librarian and duration it records the book a call addresses and,
// for a started rental, the new rental ID.
// Install it after RequireLibrarian so the librarian is already in the context.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"librarian", GetLibrarian(ctx), // empty for reads and when auth is disabled
				"request_id", GetRequestID(ctx),
			}
			if msg, ok := req.Any().(bookScoped); ok {
				attrs = append(attrs, "book_id", msg.GetBookId())
			}

			resp, err := next(ctx, req)

			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.Warn("RPC error", append(attrs, "code", connectErr.Code(), "error", connectErr.Message())...)
				} else {
					slog.Error("RPC error", append(attrs, "error", err)...)
				}
				return resp, err
			}

			if resp != nil {
				if msg, ok := resp.Any().(rentalResult); ok {
					attrs = append(attrs, "rental_id", msg.GetRentalId())
				}
			}
			slog.Info("RPC ok", attrs...)
			return resp, err
		}
	}
}
