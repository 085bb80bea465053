package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/kbukum/apierr/auth/jwt"
	"github.com/kbukum/apierr/auth/password"
	"github.com/kbukum/apierr/cursor"
	"github.com/kbukum/apierr/database"
	apperrors "github.com/kbukum/apierr/errors"
	"github.com/kbukum/apierr/logger"
)

// captureLogs routes the global logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetGlobalLogger(logger.NewWithWriter(&logger.Config{Level: "info", Format: logger.FormatJSON}, "test", &buf))
	t.Cleanup(func() { logger.SetGlobalLogger(logger.NewNop()) })
	return &buf
}

func uniqueViolation(detail string) *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           pgerrcode.UniqueViolation,
		Message:        `duplicate key value violates unique constraint "users_username_key"`,
		Detail:         detail,
		ConstraintName: "users_username_key",
	}
}

func assertCode(t *testing.T, e apperrors.Error, want apperrors.ErrorCode) {
	t.Helper()
	if e.Code() != want {
		t.Errorf("expected %s, got %s", want, e.Code())
	}
}

func TestFromDatabase(t *testing.T) {
	t.Run("unique violation with value", func(t *testing.T) {
		e := FromDatabase(uniqueViolation("Key (username)=(esteban) already exists."))
		assertCode(t, e, apperrors.CodeUnique)
		if f, _ := e.Field(); f != "username" {
			t.Errorf("expected field 'username', got %q", f)
		}
		if m, _ := e.Message(); m != "A username with esteban already exists" {
			t.Errorf("unexpected message %q", m)
		}
	})

	t.Run("unique violation without value", func(t *testing.T) {
		e := FromDatabase(uniqueViolation("Key (email) already exists."))
		assertCode(t, e, apperrors.CodeUnique)
		if m, _ := e.Message(); m != "The email already exists" {
			t.Errorf("unexpected message %q", m)
		}
	})

	t.Run("wrapped unique violation", func(t *testing.T) {
		err := fmt.Errorf("account: insert: %w", uniqueViolation("Key (email)=(a@b.c) already exists."))
		e := FromDatabase(err)
		assertCode(t, e, apperrors.CodeUnique)
		if f, _ := e.Field(); f != "email" {
			t.Errorf("expected field 'email', got %q", f)
		}
	})

	fallbacks := []struct {
		name string
		err  error
	}{
		{"missing detail", uniqueViolation("")},
		{"malformed detail", uniqueViolation("something else entirely")},
		{"other sqlstate", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Message: "fk"}},
		{"not a driver error", errors.New("no rows in result set")},
	}
	for _, tc := range fallbacks {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLogs(t)
			e := FromDatabase(tc.err)
			assertCode(t, e, apperrors.CodeUnhandled)
			if m, _ := e.Message(); m != tc.err.Error() {
				t.Errorf("expected message %q, got %q", tc.err.Error(), m)
			}
			if !strings.Contains(buf.String(), `"source":"database"`) {
				t.Errorf("expected diagnostic log, got %q", buf.String())
			}
		})
	}
}

func TestFromToken(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{"malformed", &jwt.ParseError{Err: gojwt.ErrTokenMalformed}, apperrors.CodeInvalidJWT},
		{"malformed joined", &jwt.ParseError{Err: fmt.Errorf("%w: bad segments", gojwt.ErrTokenMalformed)}, apperrors.CodeInvalidJWT},
		{"expired", &jwt.ParseError{Err: gojwt.ErrTokenExpired}, apperrors.CodeUnhandled},
		{"bad signature", &jwt.ParseError{Err: gojwt.ErrTokenSignatureInvalid}, apperrors.CodeUnhandled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			captureLogs(t)
			e := FromToken(tc.err)
			assertCode(t, e, tc.want)
			if tc.want == apperrors.CodeInvalidJWT {
				if _, ok := e.Field(); ok {
					t.Error("expected no field")
				}
				if _, ok := e.Message(); ok {
					t.Error("expected no message")
				}
			}
		})
	}
}

func TestFromPool(t *testing.T) {
	buf := captureLogs(t)
	err := &database.PoolError{Op: "acquire", Err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}
	e := FromPool(err)
	if e != apperrors.ServerError() {
		t.Errorf("expected bare SERVER_ERROR, got %v", e)
	}
	body := fmt.Sprintf("%+v", e.ToResponse())
	if strings.Contains(body, "10.0.0.5") || strings.Contains(body, "refused") {
		t.Errorf("pool detail leaked into response: %s", body)
	}
	if !strings.Contains(buf.String(), "connection refused") {
		t.Error("expected pool cause in diagnostic log")
	}
}

func TestFromPassword(t *testing.T) {
	captureLogs(t)
	err := &password.Error{Op: "hash", Err: password.ErrTooShort}
	e := FromPassword(err)
	assertCode(t, e, apperrors.CodeUnhandled)
	if m, _ := e.Message(); m != err.Error() {
		t.Errorf("expected message %q, got %q", err.Error(), m)
	}
}

func TestFromCursor(t *testing.T) {
	var buf bytes.Buffer
	logger.SetGlobalLogger(logger.NewWithWriter(&logger.Config{Level: "debug", Format: logger.FormatJSON}, "test", &buf))
	t.Cleanup(func() { logger.SetGlobalLogger(logger.NewNop()) })

	_, err := cursor.Decode("!!!")
	e := FromCursor(err)
	if e != apperrors.FromCode(apperrors.CodeBase64Cursor) {
		t.Errorf("expected bare BASE64_CURSOR_ERROR, got %v", e)
	}
	if !strings.Contains(buf.String(), `"source":"cursor"`) || !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("expected debug cursor log, got %q", buf.String())
	}
}

func TestFromCursor_InfoLevelIsQuiet(t *testing.T) {
	buf := captureLogs(t)
	_, err := cursor.Decode("!!!")
	FromCursor(err)
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}

func TestFromUpstream(t *testing.T) {
	buf := captureLogs(t)
	e := FromUpstream(gqlerror.Errorf("field %q not found", "nope"))
	if e != apperrors.ServerError() {
		t.Errorf("expected SERVER_ERROR, got %v", e)
	}
	if !strings.Contains(buf.String(), `"source":"upstream"`) {
		t.Errorf("expected upstream log, got %q", buf.String())
	}
}

func TestTranslate_Dispatch(t *testing.T) {
	_, cursorErr := cursor.Decode("%%%")
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{"canonical passes through", apperrors.InvalidCredentials(), apperrors.CodeInvalidCredentials},
		{"wrapped canonical", fmt.Errorf("resolver: %w", apperrors.Unique("email")), apperrors.CodeUnique},
		{"database", fmt.Errorf("insert: %w", uniqueViolation("Key (email)=(a@b.c) already exists.")), apperrors.CodeUnique},
		{"pool", &database.PoolError{Op: "acquire", Err: context.DeadlineExceeded}, apperrors.CodeServerError},
		{"pool wrapping driver error", &database.PoolError{Op: "open", Err: &pgconn.PgError{Code: pgerrcode.InvalidPassword}}, apperrors.CodeServerError},
		{"token", &jwt.ParseError{Err: gojwt.ErrTokenMalformed}, apperrors.CodeInvalidJWT},
		{"password", &password.Error{Op: "compare", Err: password.ErrMalformedHash}, apperrors.CodeUnhandled},
		{"cursor", fmt.Errorf("list: %w", cursorErr), apperrors.CodeBase64Cursor},
		{"upstream", gqlerror.Errorf("upstream broke"), apperrors.CodeServerError},
		{"upstream list", gqlerror.List{gqlerror.Errorf("a"), gqlerror.Errorf("b")}, apperrors.CodeServerError},
		{"unknown", errors.New("mystery"), apperrors.CodeUnhandled},
		{"nil", nil, apperrors.CodeUnhandled},
		{"zero canonical", apperrors.Error{}, apperrors.CodeUnhandled},
		{"undeclared code", fmt.Errorf("x: %w", apperrors.FromCode(99)), apperrors.CodeUnhandled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			captureLogs(t)
			assertCode(t, Translate(tc.err), tc.want)
		})
	}
}

func TestPresent(t *testing.T) {
	captureLogs(t)
	gqlErr := Present(context.Background(), &jwt.ParseError{Err: gojwt.ErrTokenMalformed})
	if gqlErr.Message != apperrors.GenericMessage {
		t.Errorf("expected generic message, got %q", gqlErr.Message)
	}
	if len(gqlErr.Extensions) != 1 || gqlErr.Extensions["code"] != "INVALID_JWT" {
		t.Errorf("unexpected extensions %v", gqlErr.Extensions)
	}
}

func TestRecord(t *testing.T) {
	captureLogs(t)
	e := Record(context.Background(), fmt.Errorf("list: %w", &database.PoolError{Op: "acquire", Err: errors.New("exhausted")}))
	if e != apperrors.ServerError() {
		t.Errorf("expected SERVER_ERROR, got %v", e)
	}
}

func TestTranslate_Concurrent(t *testing.T) {
	logger.SetGlobalLogger(logger.NewNop())
	errs := []error{
		uniqueViolation("Key (username)=(esteban) already exists."),
		&database.PoolError{Op: "acquire", Err: errors.New("exhausted")},
		&jwt.ParseError{Err: gojwt.ErrTokenMalformed},
		errors.New("mystery"),
	}
	want := []apperrors.ErrorCode{
		apperrors.CodeUnique,
		apperrors.CodeServerError,
		apperrors.CodeInvalidJWT,
		apperrors.CodeUnhandled,
	}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := i % len(errs)
			if got := Translate(errs[k]).Code(); got != want[k] {
				t.Errorf("expected %s, got %s", want[k], got)
			}
		}(i)
	}
	wg.Wait()
}
