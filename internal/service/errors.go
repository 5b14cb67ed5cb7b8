package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitify/internal/auth"
	"github.com/mmynk/splitify/internal/errs"
	"github.com/mmynk/splitify/internal/middleware"
	"github.com/mmynk/splitify/internal/models"
)

// toConnectError maps ledger error kinds to Connect codes, keeping the message.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, errs.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrUserNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, errs.ErrDuplicateFriendship):
		code = connect.CodeAlreadyExists
	case errors.Is(err, errs.ErrForbidden):
		code = connect.CodePermissionDenied
	case errors.Is(err, errs.ErrStoreUnavailable):
		code = connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	}
	return connect.NewError(code, err)
}

// callerFrom returns the authenticated caller placed in ctx by RequireAuth.
func callerFrom(ctx context.Context) (models.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok || id.Phone == "" {
		return models.Identity{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return id, nil
}
