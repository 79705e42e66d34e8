package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/booklibrary/internal/library"
	"github.com/mmynk/booklibrary/internal/lock"
	"github.com/mmynk/booklibrary/internal/validation"
)

var errInternal = errors.New("internal error")

// toConnectError maps library errors onto Connect codes.
// FailedPrecondition is sent as HTTP 400 by the Connect protocol.
// Internal failures are logged and reported without their cause.
func toConnectError(err error) *connect.Error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, library.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, library.ErrInvalidState):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, lock.ErrTimeout):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		slog.Error("Request failed", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}
