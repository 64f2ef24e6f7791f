package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJWT struct {
	claims jwt.Claims
	err    error
}

func (f *fakeJWT) Generate(int64, string) (string, error) { return "token", nil }
func (f *fakeJWT) Verify(string) (jwt.Claims, error)     { return f.claims, f.err }

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type okResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

type createdResponse struct {
	Message string `json:"message"`
}

func (createdResponse) StatusCode() int { return http.StatusCreated }

func newTestRouter(t *testing.T, verifier jwt.JWT, cfgYAML string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(cfgYAML))
	require.NoError(t, err)

	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-gen"), JWT: verifier})
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_FlatSuccessBody(t *testing.T) {
	// Arrange
	r := newTestRouter(t, &fakeJWT{}, "app: {}")
	r.POST("/auth/register", func(req *Request) (any, error) {
		var in struct {
			Email string `json:"email"`
		}
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return okResponse{Message: "sent", Email: in.Email}, nil
	})

	// Act
	rec := do(r, http.MethodPost, "/auth/register", `{"email":"a@x.com"}`, nil)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"message": "sent", "email": "a@x.com"}, decode(t, rec))
	assert.Equal(t, "cid-gen", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_StatusCodeAndNoContent(t *testing.T) {
	r := newTestRouter(t, &fakeJWT{}, "app: {}")
	r.POST("/auth/login", func(*Request) (any, error) { return createdResponse{Message: "ok"}, nil })
	r.POST("/auth/logout-otp", func(*Request) (any, error) { return nil, nil })

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/auth/login", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/auth/logout-otp", "", nil).Code)
}

func TestRouter_ErrorBodies(t *testing.T) {
	r := newTestRouter(t, &fakeJWT{}, "app: {}")
	r.POST("/auth/verify-otp", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("OTP has expired", goerror.CodeExpired)
	})
	r.POST("/auth/resend-otp", func(*Request) (any, error) {
		return nil, errors.New("db down")
	})
	r.POST("/auth/login", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(nil, "email", "Email is a required field")
	})

	rec := do(r, http.MethodPost, "/auth/verify-otp", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"message": "OTP has expired"}, decode(t, rec))

	rec = do(r, http.MethodPost, "/auth/resend-otp", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode(t, rec)["message"])

	rec = do(r, http.MethodPost, "/auth/login", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]any{"email": "Email is a required field"}, decode(t, rec)["error"])
}

func TestRouter_DecodeBodyRejectsGarbage(t *testing.T) {
	r := newTestRouter(t, &fakeJWT{}, "app: {}")
	r.POST("/auth/login", func(req *Request) (any, error) {
		var in struct {
			Email string `json:"email"`
		}
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return okResponse{Message: "ok"}, nil
	})

	for _, body := range []string{"", "{", `{"email":"a"}{}`, `{"unknown":1}`} {
		rec := do(r, http.MethodPost, "/auth/login", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, "Invalid request body", decode(t, rec)["message"])
	}
}

func TestRouter_Authentication(t *testing.T) {
	verifier := &fakeJWT{claims: jwt.Claims{UserID: 9}}
	r := newTestRouter(t, verifier, "app: {}")
	r.PUT("/auth/profile", func(req *Request) (any, error) {
		return okResponse{Message: "ok", Email: jwt.GetAuth(req.Context()).UserEmail}, nil
	})

	rec := do(r, http.MethodPut, "/auth/profile", "{}", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", decode(t, rec)["message"])

	rec = do(r, http.MethodPut, "/auth/profile", "{}", map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, rec.Code)

	verifier.err = jwt.ErrInvalidToken
	rec = do(r, http.MethodPut, "/auth/profile", "{}", map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", decode(t, rec)["message"])
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, &fakeJWT{}, "app:\n  maintenance:\n    endpoints: /auth/register\n")
	r.POST("/auth/register", func(*Request) (any, error) { return okResponse{Message: "ok"}, nil })

	rec := do(r, http.MethodPost, "/auth/register", "{}", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := newTestRouter(t, &fakeJWT{}, "app: {}")
	r.GET("/health", func(*Request) (any, error) { panic("boom") })

	rec := do(r, http.MethodGet, "/health", "", map[string]string{HeaderRequestID: "req-1"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_NotFound(t *testing.T) {
	r := newTestRouter(t, &fakeJWT{}, "app: {}")

	rec := do(r, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint not found", decode(t, rec)["message"])
}
