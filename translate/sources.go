package translate

import (
	"errors"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/kbukum/apierr/errors"
	"github.com/kbukum/apierr/logger"
)

// FromDatabase translates a data store failure. Unique violations with a
// parseable detail become UNIQUE on the offending column; everything else,
// including unparseable details, becomes UNHANDLED.
func FromDatabase(err error) apperrors.Error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return unhandled(SourceDatabase, err)
	}
	c, ok := ExtractConstraint(pgErr.Detail)
	if !ok {
		return unhandled(SourceDatabase, err)
	}
	if c.HasValue {
		return apperrors.UniqueValue(c.Column, c.Value)
	}
	return apperrors.Unique(c.Column)
}

// FromToken translates a token validation failure. Only malformed tokens are
// classified; other failures (expiry, bad signature) become UNHANDLED.
func FromToken(err error) apperrors.Error {
	if errors.Is(err, gojwt.ErrTokenMalformed) {
		return apperrors.FromCode(apperrors.CodeInvalidJWT)
	}
	return unhandled(SourceToken, err)
}

// FromPool translates a connection pool failure to SERVER_ERROR.
// The cause is logged and never surfaced.
func FromPool(err error) apperrors.Error {
	logCause(SourcePool, apperrors.CodeServerError, err)
	return apperrors.ServerError()
}

// FromPassword translates a password hashing failure to UNHANDLED.
func FromPassword(err error) apperrors.Error {
	return unhandled(SourcePassword, err)
}

// FromCursor translates a cursor decoding failure. The cause is a client
// mistake and is only logged at debug level.
func FromCursor(err error) apperrors.Error {
	if err != nil {
		logger.WithComponent("translate").Debug("Cursor rejected",
			logger.Fields(logger.FieldSource, SourceCursor, logger.FieldError, err.Error()))
	}
	return apperrors.FromCode(apperrors.CodeBase64Cursor)
}

// FromUpstream translates a failure of the upstream GraphQL layer to
// SERVER_ERROR so its error taxonomy never reaches clients.
func FromUpstream(err error) apperrors.Error {
	logCause(SourceUpstream, apperrors.CodeServerError, err)
	return apperrors.ServerError()
}
