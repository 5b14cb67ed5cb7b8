package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/idempotency"
)

// IdempotencyHeader carries the client-chosen key for a mutating call.
const IdempotencyHeader = "Idempotency-Key"

var errReplayed = errors.New("request with this idempotency key was already processed")

// Idempotency returns an interceptor that reserves the Idempotency-Key of
// mutating calls. A reused key fails with AlreadyExists. Calls without the
// header and procedures marked side-effect free pass through. A failed call
// releases its key so the client can retry it.
func Idempotency(store idempotency.Store, ttl time.Duration, logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id := strings.TrimSpace(req.Header().Get(IdempotencyHeader))
			if id == "" || store == nil || req.Spec().IdempotencyLevel == connect.IdempotencyNoSideEffects {
				return next(ctx, req)
			}

			key := idempotency.Key(CallerPhone(ctx), req.Spec().Procedure, id)
			ok, err := store.Reserve(ctx, key, ttl)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnavailable, err)
			}
			if !ok {
				return nil, connect.NewError(connect.CodeAlreadyExists, errReplayed)
			}

			resp, err := next(ctx, req)
			if err != nil {
				if relErr := store.Release(context.WithoutCancel(ctx), key); relErr != nil {
					logger.Warn("failed to release idempotency key", "procedure", req.Spec().Procedure, "error", relErr)
				}
			}
			return resp, err
		}
	}
}
