package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

const requestInfoKey contextKey = "request_info"

type requestInfo struct {
	id     string
	userID string
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

// GetRequestID returns the id assigned by LoggingInterceptor, or "".
func GetRequestID(ctx context.Context) string {
	if info := requestInfoFrom(ctx); info != nil {
		return info.id
	}
	return ""
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It must run outside RequireAuth so that rejected calls are logged too.
// Each call gets a request id, taken from X-Request-Id when the client sent
// one, echoed back in the response header.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			info := &requestInfo{id: req.Header().Get(RequestIDHeader)}
			if info.id == "" {
				info.id = uuid.NewString()
			}
			info.userID = GetUserID(ctx)
			ctx = context.WithValue(ctx, requestInfoKey, info)

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			attrs := []any{
				"procedure", procedure,
				"request_id", info.id,
				"user_id", info.userID,
				"duration_ms", duration,
			}
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(RequestIDHeader, info.id)
					slog.Warn("RPC error", append(attrs,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
					)...)
				} else {
					slog.Error("RPC error", append(attrs, "error", err)...)
				}
			} else {
				if resp != nil {
					resp.Header().Set(RequestIDHeader, info.id)
				}
				slog.Info("RPC ok", attrs...)
			}

			return resp, err
		}
	}
}
