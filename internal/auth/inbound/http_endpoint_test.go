package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otpgate/internal/auth/entity"
	"github.com/shandysiswandi/otpgate/internal/auth/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsecase struct {
	registerIn     usecase.RegisterInput
	logoutVerifyIn usecase.LogoutVerifyInput
	profileClaims  *jwt.Claims
	err            error
}

var jane = entity.User{ID: 1931234567890123456, Name: "Jane", Email: "jane@x.io", PasswordHash: "secret-hash", Phone: "1", Address: "A"}

func (f *fakeUsecase) Register(_ context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	f.registerIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.RegisterOutput{Email: in.Email}, nil
}

func (f *fakeUsecase) RegisterVerify(context.Context, usecase.RegisterVerifyInput) (*usecase.AuthOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.AuthOutput{Token: "tok", User: jane}, nil
}

func (f *fakeUsecase) RegisterResend(_ context.Context, in usecase.RegisterResendInput) (*usecase.RegisterResendOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.RegisterResendOutput{Email: in.Email}, nil
}

func (f *fakeUsecase) Login(context.Context, usecase.LoginInput) (*usecase.AuthOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.AuthOutput{Token: "tok", User: jane}, nil
}

func (f *fakeUsecase) ProfileUpdate(ctx context.Context, _ usecase.ProfileUpdateInput) (*usecase.ProfileUpdateOutput, error) {
	f.profileClaims = jwt.GetAuth(ctx)
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ProfileUpdateOutput{User: jane}, nil
}

func (f *fakeUsecase) Logout(_ context.Context, in usecase.LogoutInput) (*usecase.LogoutOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.LogoutOutput{Email: in.Email}, nil
}

func (f *fakeUsecase) LogoutVerify(_ context.Context, in usecase.LogoutVerifyInput) (*usecase.LogoutVerifyOutput, error) {
	f.logoutVerifyIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.LogoutVerifyOutput{Success: true}, nil
}

type fakeJWT struct{}

func (fakeJWT) Generate(int64, string) (string, error) { return "tok", nil }

func (fakeJWT) Verify(token string) (jwt.Claims, error) {
	if token != "good" {
		return jwt.Claims{}, jwt.ErrInvalidToken
	}
	return jwt.Claims{UserID: jane.ID}, nil
}

type fixedID string

func (f fixedID) Generate() string { return string(f) }

func setup(f *fakeUsecase) *router.Router {
	r := router.NewRouter(router.Config{UUID: fixedID("cid"), JWT: fakeJWT{}})
	RegisterHTTPEndpoint(r, f)
	return r
}

func call(r http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRegister(t *testing.T) {
	// Arrange
	f := &fakeUsecase{}
	r := setup(f)

	// Act
	rec, body := call(r, http.MethodPost, "/auth/register",
		`{"name":"Jane","email":"jane@x.io","password":"secret1","phone":"1","address":"A"}`, "")

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@x.io", body["email"])
	assert.Equal(t, msgCodeSent, body["message"])
	assert.Equal(t, "secret1", f.registerIn.Password)
}

func TestRegister_UnknownField(t *testing.T) {
	rec, body := call(setup(&fakeUsecase{}), http.MethodPost, "/auth/register", `{"full_name":"x"}`, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", body["message"])
}

func TestRegisterVerify_UserShape(t *testing.T) {
	rec, body := call(setup(&fakeUsecase{}), http.MethodPost, "/auth/verify-otp", `{"email":"jane@x.io","otp":"123456"}`, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1931234567890123456", user["id"])
	assert.Equal(t, "jane@x.io", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, rec.Body.String(), "secret-hash")
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		err    error
		want   int
	}{
		{"expired", http.MethodPost, "/auth/verify-otp", goerror.NewBusiness("OTP has expired", goerror.CodeExpired), http.StatusBadRequest},
		{"bad credentials", http.MethodPost, "/auth/login", goerror.NewBusiness("Invalid email or password", goerror.CodeInvalidCredentials), http.StatusUnauthorized},
		{"delivery", http.MethodPost, "/auth/resend-otp", goerror.NewDelivery(context.DeadlineExceeded, "Failed to send"), http.StatusInternalServerError},
		{"locked", http.MethodPost, "/auth/verify-logout-otp", goerror.NewBusiness("Too many", goerror.CodeTooManyRequest), http.StatusTooManyRequests},
		{"no account", http.MethodPost, "/auth/logout-otp", goerror.NewBusiness("No account", goerror.CodeNotFound), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := call(setup(&fakeUsecase{err: tt.err}), tt.method, tt.path, `{"email":"jane@x.io","otp":"123456","password":"x"}`, "")

			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestProfileUpdate_RequiresToken(t *testing.T) {
	f := &fakeUsecase{}
	r := setup(f)

	rec, _ := call(r, http.MethodPut, "/auth/profile", `{"name":"J","email":"j@x.io"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = call(r, http.MethodPut, "/auth/profile", `{"name":"J","email":"j@x.io"}`, "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := call(r, http.MethodPut, "/auth/profile", `{"name":"J","email":"j@x.io"}`, "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Profile updated successfully", body["message"])
	require.NotNil(t, f.profileClaims)
	assert.Equal(t, jane.ID, f.profileClaims.UserID)
}

func TestLogoutVerify_ForwardsBearer(t *testing.T) {
	f := &fakeUsecase{}
	r := setup(f)

	rec, body := call(r, http.MethodPost, "/auth/verify-logout-otp", `{"email":"jane@x.io","otp":"123456"}`, "any-token")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "any-token", f.logoutVerifyIn.Token)
}
