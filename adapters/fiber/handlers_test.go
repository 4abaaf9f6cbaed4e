package fiber

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/apothecary/core"
	"github.com/lborres/apothecary/pkg/crypto"
	"github.com/lborres/apothecary/pkg/store/memory"
	"github.com/lborres/apothecary/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const elixirBody = `{"name":"Elixir","ingredients":["mandrake"],"effects":{"strength":7,"flavor":3},"categories":["healing","calm"],"price":12.5,"score":4,"vendorId":"vendorA"}`

type observedRequest struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []observedRequest
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, observedRequest{method: method, route: route, status: status})
}

func (o *recordingObserver) last() observedRequest {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.requests[len(o.requests)-1]
}

// brokenStore fails every potion read.
type brokenStore struct {
	*memory.Store
}

func (brokenStore) ListPotionNames(context.Context) ([]string, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) CreateUser(context.Context, *core.User) error {
	return errors.New("connection refused")
}

func newTestServer(t *testing.T, store core.Storage) (*fiber.App, *recordingObserver) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := &crypto.Argon2{Memory: 64, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	sessions := services.NewSessionManager(core.DefaultSessionConfig(), crypto.NewJWTIssuer(testSecret))

	app := &core.App{
		Auth:           services.NewAuthService(store, hasher, sessions, logger),
		Potions:        services.NewPotionService(store, logger),
		Endpoints:      services.NewEndpointRegistry().Endpoints(),
		Session:        core.DefaultSessionConfig(),
		RequestTimeout: time.Second,
		Logger:         logger,
	}

	server := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	observer := &recordingObserver{}
	require.NoError(t, New(server, WithObserver(observer)).RegisterRoutes(app))
	return server, observer
}

func send(t *testing.T, app *fiber.App, method, path, body string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == core.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", core.DefaultCookieName)
	return nil
}

// Requirement: register then login issues an HTTP-only session cookie that
// authenticates later requests.
func TestAuthFlow(t *testing.T) {
	app, _ := newTestServer(t, memory.New())
	creds := `{"name":"merlin","password":"secret1"}`

	resp := send(t, app, http.MethodPost, "/auth/register", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, map[string]string{"message": "User created"}, decode[map[string]string](t, resp))

	resp = send(t, app, http.MethodPost, "/auth/login", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 86400, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)
	assert.NotEmpty(t, cookie.Value)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Logged in successfully"}`, string(body))
	assert.NotContains(t, string(body), cookie.Value)

	resp = send(t, app, http.MethodGet, "/auth/session", "", &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	session := decode[map[string]any](t, resp)
	assert.Equal(t, "merlin", session["name"])
	assert.NotEmpty(t, session["userId"])
}

func TestAuth_BearerToken(t *testing.T) {
	app, _ := newTestServer(t, memory.New())
	creds := `{"name":"merlin","password":"secret1"}`
	send(t, app, http.MethodPost, "/auth/register", creds)
	token := sessionCookie(t, send(t, app, http.MethodPost, "/auth/login", creds)).Value

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name       string
		store      func() core.Storage
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "all fields invalid",
			body:       `{"name":"","password":"abc"}`,
			wantStatus: http.StatusBadRequest,
			wantBody: `{"errors":[
				{"field":"name","msg":"username is required","location":"body"},
				{"field":"password","msg":"password must be at least 6 characters","location":"body"}]}`,
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantBody: `{"errors":[
				{"field":"name","msg":"username is required","location":"body"},
				{"field":"password","msg":"password is required","location":"body"}]}`,
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid request body"}`,
		},
		{
			name:       "non string name",
			body:       `{"name":42,"password":"secret1"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid request body"}`,
		},
		{
			name:       "short markup password",
			body:       `{"name":"merlin","password":"<<<"}`,
			wantStatus: http.StatusBadRequest,
			wantBody: `{"errors":[
				{"field":"password","msg":"password must be at least 6 characters","location":"body"}]}`,
		},
		{
			name:       "markup name counted before escaping",
			body:       `{"name":"<<<<<<<<","password":"secret1"}`,
			wantStatus: http.StatusCreated,
			wantBody:   `{"message":"User created"}`,
		},
		{
			name:       "store failure",
			store:      func() core.Storage { return brokenStore{memory.New()} },
			body:       `{"name":"merlin","password":"secret1"}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"system error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var store core.Storage = memory.New()
			if tt.store != nil {
				store = tt.store()
			}
			app, _ := newTestServer(t, store)

			resp := send(t, app, http.MethodPost, "/auth/register", tt.body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}

// Requirement: a duplicate name is reported as a generic system error.
func TestRegister_Duplicate(t *testing.T) {
	store := memory.New()
	app, _ := newTestServer(t, store)
	creds := `{"name":"merlin","password":"secret1"}`

	first := send(t, app, http.MethodPost, "/auth/register", creds)
	second := send(t, app, http.MethodPost, "/auth/register", creds)

	assert.Equal(t, http.StatusCreated, first.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, second.StatusCode)
	assert.Equal(t, map[string]string{"error": "system error"}, decode[map[string]string](t, second))
	assert.Equal(t, 1, store.Stats().Users)
}

// Requirement: wrong password and unknown user produce identical responses.
func TestLogin_InvalidCredentials(t *testing.T) {
	app, _ := newTestServer(t, memory.New())
	send(t, app, http.MethodPost, "/auth/register", `{"name":"merlin","password":"secret1"}`)

	wrong := send(t, app, http.MethodPost, "/auth/login", `{"name":"merlin","password":"secret2"}`)
	unknown := send(t, app, http.MethodPost, "/auth/login", `{"name":"morgana","password":"secret1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrong.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknown.StatusCode)
	wrongBody, _ := io.ReadAll(wrong.Body)
	unknownBody, _ := io.ReadAll(unknown.Body)
	assert.JSONEq(t, `{"error":"invalid credentials"}`, string(wrongBody))
	assert.Equal(t, string(wrongBody), string(unknownBody))
	assert.Empty(t, wrong.Cookies())
}

// Requirement: logout always succeeds and expires the cookie.
func TestLogout(t *testing.T) {
	app, _ := newTestServer(t, memory.New())

	resp := send(t, app, http.MethodGet, "/auth/logout", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"message": "Logged out"}, decode[map[string]string](t, resp))
	cookie := sessionCookie(t, resp)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()), "cookie should be expired, got %v", cookie.Expires)
	assert.True(t, cookie.HttpOnly)
}

func TestSession_Unauthorized(t *testing.T) {
	tests := []struct {
		name    string
		cookies []*http.Cookie
	}{
		{name: "no cookie"},
		{name: "garbage token", cookies: []*http.Cookie{{Name: core.DefaultCookieName, Value: "not-a-token"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestServer(t, memory.New())

			resp := send(t, app, http.MethodGet, "/auth/session", "", tt.cookies...)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, map[string]string{"error": "unauthorized"}, decode[map[string]string](t, resp))
		})
	}
}

// Requirement: the potion endpoints cover the whole create, read, update,
// delete cycle.
func TestPotionLifecycle(t *testing.T) {
	app, observer := newTestServer(t, memory.New())

	resp := send(t, app, http.MethodPost, "/potions", elixirBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[struct {
		Message string       `json:"message"`
		Potion  *core.Potion `json:"potion"`
	}](t, resp)
	assert.Equal(t, "Potion created", created.Message)
	require.NotEmpty(t, created.Potion.ID)
	id := created.Potion.ID

	resp = send(t, app, http.MethodGet, "/potions/names", "")
	assert.Equal(t, []string{"Elixir"}, decode[[]string](t, resp))

	resp = send(t, app, http.MethodGet, "/potions/vendor/vendorA", "")
	assert.Len(t, decode[[]map[string]any](t, resp), 1)

	resp = send(t, app, http.MethodGet, "/potions/vendor/nobody", "")
	assert.Equal(t, []map[string]any{}, decode[[]map[string]any](t, resp))

	resp = send(t, app, http.MethodPut, "/potions/"+id, `{"price":20,"effects":{"flavor":9}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[map[string]any](t, resp)
	assert.Equal(t, "Potion updated", updated["message"])
	potion := updated["potion"].(map[string]any)
	assert.Equal(t, 20.0, potion["price"])
	assert.Equal(t, map[string]any{"strength": 7.0, "flavor": 9.0}, potion["effects"])
	assert.Equal(t, observedRequest{method: http.MethodPut, route: "/potions/:id", status: http.StatusOK}, observer.last())

	resp = send(t, app, http.MethodDelete, "/potions/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"message": "Potion deleted"}, decode[map[string]string](t, resp))

	resp = send(t, app, http.MethodDelete, "/potions/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, map[string]string{"error": "Potion not found"}, decode[map[string]string](t, resp))
}

func TestPotion_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantFields []string
		wantError  string
	}{
		{
			name:       "missing effects strength",
			method:     http.MethodPost,
			path:       "/potions",
			body:       strings.Replace(elixirBody, `"strength":7,`, "", 1),
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"effects.strength"},
		},
		{
			name:       "numeric string price",
			method:     http.MethodPost,
			path:       "/potions",
			body:       strings.Replace(elixirBody, `"price":12.5`, `"price":"12.5"`, 1),
			wantStatus: http.StatusBadRequest,
			wantFields: []string{"price"},
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			path:       "/potions",
			body:       `[1,2,3]`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "update unknown id",
			method:     http.MethodPut,
			path:       "/potions/missing",
			body:       `{"price":1}`,
			wantStatus: http.StatusNotFound,
			wantError:  "Potion not found",
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/elixirs",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestServer(t, memory.New())

			resp := send(t, app, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[core.ErrorResponse](t, resp)
			assert.NotEmpty(t, body.Error)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body.Error)
			}
			fields := make([]string, len(body.Errors))
			for i, fe := range body.Errors {
				fields[i] = fe.Field
			}
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, fields)
			} else {
				assert.Empty(t, fields)
			}
		})
	}
}

// Requirement: analytics are computed over the catalog and are zero when
// it is empty.
func TestAnalytics(t *testing.T) {
	app, _ := newTestServer(t, memory.New())

	assert.Equal(t, 0.0, decode[float64](t, send(t, app, http.MethodGet, "/potions/analytics/average-score", "")))
	assert.Equal(t, 0.0, decode[float64](t, send(t, app, http.MethodGet, "/potions/analytics/total-price", "")))
	assert.Equal(t, []string{}, decode[[]string](t, send(t, app, http.MethodGet, "/potions/analytics/distinct-categories", "")))

	send(t, app, http.MethodPost, "/potions", elixirBody)
	send(t, app, http.MethodPost, "/potions", strings.NewReplacer(`"vendorA"`, `"vendorB"`, `"score":4`, `"score":10`, `"calm"`, `"bold"`).Replace(elixirBody))

	assert.Equal(t, 7.0, decode[float64](t, send(t, app, http.MethodGet, "/potions/analytics/average-score", "")))
	assert.Equal(t, 25.0, decode[float64](t, send(t, app, http.MethodGet, "/potions/analytics/total-price", "")))
	assert.Equal(t, 2.0, decode[float64](t, send(t, app, http.MethodGet, "/potions/analytics/total-potions", "")))
	assert.Equal(t, []string{"bold", "calm", "healing"},
		decode[[]string](t, send(t, app, http.MethodGet, "/potions/analytics/distinct-categories", "")))
	assert.Equal(t, []core.VendorScore{{VendorID: "vendorA", AverageScore: 4}, {VendorID: "vendorB", AverageScore: 10}},
		decode[[]core.VendorScore](t, send(t, app, http.MethodGet, "/potions/analytics/average-score-by-vendor", "")))
}

func TestStoreFailure_IsInternalError(t *testing.T) {
	app, observer := newTestServer(t, brokenStore{memory.New()})

	resp := send(t, app, http.MethodGet, "/potions/names", "")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]string{"error": "internal server error"}, decode[map[string]string](t, resp))
	assert.Equal(t, http.StatusInternalServerError, observer.last().status)
}

func TestRegisterRoutes_UnknownOperation(t *testing.T) {
	server := fiber.New()
	app := &core.App{
		Endpoints: []core.Endpoint{{
			Method:   http.MethodGet,
			Path:     "/brew",
			Metadata: core.EndpointMetadata{OperationID: "brew"},
		}},
	}

	err := New(server).RegisterRoutes(app)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "brew")
}
