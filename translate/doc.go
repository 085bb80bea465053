// Package translate normalizes collaborator failures into apperrors.Error.
//
// There is one translator per failure source:
//
//	FromDatabase  *pgconn.PgError      unique violation -> UNIQUE, else UNHANDLED
//	FromToken     *jwt.ParseError      malformed token  -> INVALID_JWT, else UNHANDLED
//	FromPool      *database.PoolError  always SERVER_ERROR
//	FromPassword  *password.Error      always UNHANDLED
//	FromCursor    *cursor.DecodeError  always BASE64_CURSOR_ERROR
//	FromUpstream  *gqlerror.Error      always SERVER_ERROR
//
// Translate dispatches on the error chain. Every translator is total and
// stateless and may be called concurrently. Causes that are not surfaced to
// the client are logged through the global logger under the "translate"
// component.
package translate
