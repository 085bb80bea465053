package translate

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apierr/auth/jwt"
	"github.com/kbukum/apierr/auth/password"
	"github.com/kbukum/apierr/cursor"
	"github.com/kbukum/apierr/database"
	apperrors "github.com/kbukum/apierr/errors"
	"github.com/kbukum/apierr/logger"
)

// Source names used in diagnostic logs.
const (
	SourceDatabase = "database"
	SourceToken    = "token"
	SourcePool     = "pool"
	SourcePassword = "password"
	SourceCursor   = "cursor"
	SourceUpstream = "upstream"
	SourceUnknown  = "unknown"
)

// AttributeCode is the span attribute carrying the translated error code.
const AttributeCode = "apierr.code"

// Translate picks the translator matching err's chain. An apperrors.Error
// already in the chain is returned unchanged; unrecognized failures become
// UNHANDLED, as is an apperrors.Error with an undeclared code.
func Translate(err error) apperrors.Error {
	if e, ok := apperrors.As(err); ok {
		if !e.Code().IsValid() {
			return unhandled(SourceUnknown, err)
		}
		return e
	}

	var (
		poolErr   *database.PoolError
		pgErr     *pgconn.PgError
		tokenErr  *jwt.ParseError
		hashErr   *password.Error
		cursorErr *cursor.DecodeError
		gqlErr    *gqlerror.Error
		gqlList   gqlerror.List
	)
	switch {
	// connect failures can carry a PgError, so the pool is checked first
	case errors.As(err, &poolErr):
		return FromPool(err)
	case errors.As(err, &pgErr):
		return FromDatabase(err)
	case errors.As(err, &tokenErr):
		return FromToken(err)
	case errors.As(err, &hashErr):
		return FromPassword(err)
	case errors.As(err, &cursorErr):
		return FromCursor(err)
	case errors.As(err, &gqlErr), errors.As(err, &gqlList):
		return FromUpstream(err)
	default:
		return unhandled(SourceUnknown, err)
	}
}

// Record translates err and records the code on the span in ctx, if any.
// UNHANDLED and SERVER_ERROR causes are also recorded as span errors.
func Record(ctx context.Context, err error) apperrors.Error {
	e := Translate(err)
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String(AttributeCode, e.Code().String()))
	if e.Code() == apperrors.CodeUnhandled || e.Code() == apperrors.CodeServerError {
		span.RecordError(err)
	}
	return e
}

// Present renders err as a GraphQL error. Its signature matches gqlgen's
// ErrorPresenterFunc.
func Present(ctx context.Context, err error) *gqlerror.Error {
	return Record(ctx, err).ToGraphQL()
}

func unhandled(source string, err error) apperrors.Error {
	logCause(source, apperrors.CodeUnhandled, err)
	return apperrors.Unhandled(err)
}

func logCause(source string, code apperrors.ErrorCode, err error) {
	msg := "<nil>"
	if err != nil {
		msg = err.Error()
	}
	logger.WithComponent("translate").Error("Failure translated to "+code.String(),
		logger.Fields(logger.FieldSource, source, logger.FieldCode, code.String(), logger.FieldError, msg))
}
