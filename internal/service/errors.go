package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/racha/internal/calculator"
	"github.com/mmynk/racha/internal/storage"
)

// toConnectError maps engine and storage errors to Connect codes. Engine
// errors carry their attributes as a google.protobuf.Struct detail.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var consistency *calculator.ConsistencyError
	var fatal *calculator.FatalDataError
	switch {
	case errors.As(err, &consistency):
		return withDetail(connect.NewError(connect.CodeFailedPrecondition, err), consistency.Fields())
	case errors.As(err, &fatal):
		return withDetail(connect.NewError(connect.CodeDataLoss, err), fatal.Fields())
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func withDetail(connectErr *connect.Error, fields map[string]any) *connect.Error {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		slog.Warn("Dropping error detail", "error", err)
		return connectErr
	}
	detail, err := connect.NewErrorDetail(st)
	if err != nil {
		slog.Warn("Dropping error detail", "error", err)
		return connectErr
	}
	connectErr.AddDetail(detail)
	return connectErr
}

func invalidArgument(err error) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}
