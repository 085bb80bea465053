package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kbukum/apierr/auth/jwt"
	"github.com/kbukum/apierr/auth/password"
	"github.com/kbukum/apierr/cursor"
	"github.com/kbukum/apierr/database"
	apperrors "github.com/kbukum/apierr/errors"
	"github.com/kbukum/apierr/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.SetGlobalLogger(logger.NewNop())
}

// memStore mimics the PostgreSQL driver's unique violation errors.
type memStore struct {
	mu      sync.Mutex
	users   []User
	failErr error
}

func (m *memStore) Insert(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return duplicate("username", u.Username)
		}
		if existing.Email == u.Email {
			return duplicate("email", u.Email)
		}
	}
	m.users = append(m.users, u)
	return nil
}

func (m *memStore) ByUsername(_ context.Context, username string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return User{}, m.failErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *memStore) List(_ context.Context, offset int64, limit int) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	if offset >= int64(len(m.users)) {
		return nil, nil
	}
	end := min(int(offset)+limit, len(m.users))
	return append([]User(nil), m.users[offset:end]...), nil
}

func duplicate(column, value string) error {
	return &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		Message:        fmt.Sprintf(`duplicate key value violates unique constraint "users_%s_key"`, column),
		Detail:         fmt.Sprintf("Key (%s)=(%s) already exists.", column, value),
		ConstraintName: "users_" + column + "_key",
	}
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	tokens, err := jwt.NewService(jwt.Config{Secret: "test-secret"}, func() *Claims { return &Claims{} })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hasher := password.NewArgon2Hasher(password.WithArgon2Memory(1024), password.WithArgon2Threads(1))
	return NewService(store, hasher, tokens)
}

func register(t *testing.T, svc *Service, username, email string) {
	t.Helper()
	_, err := svc.Register(context.Background(), RegisterInput{Username: username, Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
}

func TestService_LoginAndAuthenticate(t *testing.T) {
	svc := newTestService(t, &memStore{})
	register(t, svc, "esteban", "esteban@example.com")

	token, err := svc.Login(context.Background(), "esteban", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Username != "esteban" {
		t.Errorf("expected username 'esteban', got %q", claims.Username)
	}
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	svc := newTestService(t, &memStore{})
	register(t, svc, "esteban", "esteban@example.com")

	for _, tc := range []struct{ name, user, pw string }{
		{"unknown user", "nobody", "password123"},
		{"wrong password", "esteban", "password124"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.user, tc.pw)
			e, ok := apperrors.As(err)
			if !ok || e.Code() != apperrors.CodeInvalidCredentials {
				t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
			}
		})
	}
}

func TestService_RegisterDuplicate(t *testing.T) {
	svc := newTestService(t, &memStore{})
	register(t, svc, "esteban", "esteban@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{Username: "esteban", Email: "other@example.com", Password: "password123"})
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestService_List(t *testing.T) {
	svc := newTestService(t, &memStore{})
	for _, name := range []string{"alice", "bob", "carol"} {
		register(t, svc, name, name+"@example.com")
	}

	page, err := svc.List(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Users) != 2 || !page.HasNextPage {
		t.Fatalf("unexpected first page: %d users, next=%v", len(page.Users), page.HasNextPage)
	}

	page, err = svc.List(context.Background(), page.EndCursor, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Users) != 1 || page.Users[0].Username != "carol" || page.HasNextPage {
		t.Errorf("unexpected second page: %+v", page)
	}

	_, err = svc.List(context.Background(), "not-a-cursor!", 2)
	var dErr *cursor.DecodeError
	if !errors.As(err, &dErr) {
		t.Errorf("expected *cursor.DecodeError, got %v", err)
	}
}

func doJSON(t *testing.T, r http.Handler, method, path, body, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return rec.Code, out
}

func extensions(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	if body["message"] != apperrors.GenericMessage {
		t.Errorf("expected generic top-level message, got %v", body["message"])
	}
	ext, ok := body["extensions"].(map[string]any)
	if !ok {
		t.Fatalf("missing extensions in %v", body)
	}
	return ext
}

func newRouter(t *testing.T, store Store) *gin.Engine {
	t.Helper()
	r := gin.New()
	NewHandler(newTestService(t, store)).Register(r)
	return r
}

func TestHandler_ErrorScenarios(t *testing.T) {
	store := &memStore{}
	r := newRouter(t, store)

	status, _ := doJSON(t, r, http.MethodPost, "/users",
		`{"username":"esteban","email":"esteban@example.com","password":"password123"}`, "")
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	t.Run("duplicate username", func(t *testing.T) {
		status, body := doJSON(t, r, http.MethodPost, "/users",
			`{"username":"esteban","email":"new@example.com","password":"password123"}`, "")
		if status != http.StatusConflict {
			t.Errorf("expected 409, got %d", status)
		}
		ext := extensions(t, body)
		if ext["code"] != "UNIQUE" || ext["field"] != "username" || ext["message"] != "A username with esteban already exists" {
			t.Errorf("unexpected extensions %v", ext)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		status, body := doJSON(t, r, http.MethodPost, "/login", `{"username":"esteban","password":"nope-nope"}`, "")
		if status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
		if ext := extensions(t, body); len(ext) != 1 || ext["code"] != "INVALID_CREDENTIALS" {
			t.Errorf("unexpected extensions %v", ext)
		}
	})

	t.Run("malformed token", func(t *testing.T) {
		status, body := doJSON(t, r, http.MethodGet, "/me", "", "garbage")
		if status != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", status)
		}
		if ext := extensions(t, body); len(ext) != 1 || ext["code"] != "INVALID_JWT" {
			t.Errorf("unexpected extensions %v", ext)
		}
	})

	t.Run("bad cursor", func(t *testing.T) {
		status, body := doJSON(t, r, http.MethodGet, "/users?after=%21%21", "", "")
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
		if ext := extensions(t, body); len(ext) != 1 || ext["code"] != "BASE64_CURSOR_ERROR" {
			t.Errorf("unexpected extensions %v", ext)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		_, body := doJSON(t, r, http.MethodPost, "/login", `{"username":"esteban","password":"password123"}`, "")
		token := body["data"].(map[string]any)["token"].(string)
		status, body := doJSON(t, r, http.MethodGet, "/me", "", token)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d (%v)", status, body)
		}
		if body["data"].(map[string]any)["username"] != "esteban" {
			t.Errorf("unexpected claims %v", body["data"])
		}
	})
}

func TestHandler_InvalidPageSize(t *testing.T) {
	r := newRouter(t, &memStore{})
	status, body := doJSON(t, r, http.MethodGet, "/users?first=ten", "", "")
	if status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", status)
	}
	ext := extensions(t, body)
	msg, _ := ext["message"].(string)
	if ext["code"] != "UNHANDLED" || !strings.Contains(msg, `invalid first "ten"`) {
		t.Errorf("unexpected extensions %v", ext)
	}
}

func TestHandler_PoolFailure(t *testing.T) {
	store := &memStore{failErr: &database.PoolError{Op: "acquire", Err: errors.New("dial tcp 10.1.2.3:5432: connection refused")}}
	r := newRouter(t, store)

	status, body := doJSON(t, r, http.MethodGet, "/users", "", "")
	if status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", status)
	}
	ext := extensions(t, body)
	if len(ext) != 1 || ext["code"] != "SERVER_ERROR" {
		t.Errorf("unexpected extensions %v", ext)
	}
	raw, _ := json.Marshal(body)
	if strings.Contains(string(raw), "10.1.2.3") {
		t.Errorf("pool detail leaked: %s", raw)
	}
}

func TestHandler_PasswordFailure(t *testing.T) {
	r := newRouter(t, &memStore{})
	status, body := doJSON(t, r, http.MethodPost, "/users",
		`{"username":"shorty","email":"shorty@example.com","password":"short"}`, "")
	if status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", status)
	}
	ext := extensions(t, body)
	if ext["code"] != "UNHANDLED" || ext["field"] != apperrors.UnhandledField {
		t.Errorf("unexpected extensions %v", ext)
	}
}
