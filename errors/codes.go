package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is a stable, client-visible failure identifier.
// The set is closed: every value outside the declared constants is invalid.
type ErrorCode uint8

const (
	// CodeBase64Cursor indicates a pagination cursor could not be decoded.
	CodeBase64Cursor ErrorCode = iota + 1
	// CodeServerError indicates a server-side failure with no client-safe detail.
	CodeServerError
	// CodeInvalidCredentials indicates a login with an unknown user or wrong password.
	CodeInvalidCredentials
	// CodeInvalidJWT indicates the presented token is not a well-formed JWT.
	CodeInvalidJWT
	// CodeUnique indicates a uniqueness conflict on a field.
	CodeUnique
	// CodeUnhandled indicates a failure no translator could classify.
	CodeUnhandled
)

var codeNames = map[ErrorCode]string{
	CodeBase64Cursor:       "BASE64_CURSOR_ERROR",
	CodeServerError:        "SERVER_ERROR",
	CodeInvalidCredentials: "INVALID_CREDENTIALS",
	CodeInvalidJWT:         "INVALID_JWT",
	CodeUnique:             "UNIQUE",
	CodeUnhandled:          "UNHANDLED",
}

var codesByName = func() map[string]ErrorCode {
	m := make(map[string]ErrorCode, len(codeNames))
	for c, name := range codeNames {
		m[name] = c
	}
	return m
}()

var httpStatuses = map[ErrorCode]int{
	CodeBase64Cursor:       http.StatusBadRequest,
	CodeServerError:        http.StatusInternalServerError,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeInvalidJWT:         http.StatusUnauthorized,
	CodeUnique:             http.StatusConflict,
	CodeUnhandled:          http.StatusInternalServerError,
}

// Codes returns every ErrorCode in declaration order.
func Codes() []ErrorCode {
	return []ErrorCode{
		CodeBase64Cursor,
		CodeServerError,
		CodeInvalidCredentials,
		CodeInvalidJWT,
		CodeUnique,
		CodeUnhandled,
	}
}

// String returns the wire identifier of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// IsValid reports whether c is one of the declared codes.
func (c ErrorCode) IsValid() bool {
	_, ok := codeNames[c]
	return ok
}

// HTTPStatus returns the recommended HTTP status for the code.
// Invalid codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatuses[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ParseErrorCode returns the code whose wire identifier is s.
func ParseErrorCode(s string) (ErrorCode, error) {
	if c, ok := codesByName[s]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("errors: unknown error code %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c ErrorCode) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("errors: cannot marshal invalid error code %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ErrorCode) UnmarshalText(text []byte) error {
	parsed, err := ParseErrorCode(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
