package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetops/auth-service/internal/core/domain"
	"github.com/fleetops/auth-service/internal/core/ports"
)

type stubAuthService struct {
	registerFn  func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	passwordFn  func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	federatedFn func(ctx context.Context, idToken string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) AuthenticatePassword(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.passwordFn(ctx, email, password)
}

func (s *stubAuthService) AuthenticateFederated(ctx context.Context, idToken string) (*ports.AuthResult, error) {
	return s.federatedFn(ctx, idToken)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sampleResult(role domain.Role) *ports.AuthResult {
	return &ports.AuthResult{
		Token:     "signed.jwt.value",
		ExpiresAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		User: &domain.User{
			ID:           "01J00000000000000000000000",
			FullName:     "Ana Ruiz",
			Email:        "ana@fleet.example",
			PasswordHash: "$2a$10$secret",
			Role:         role,
			Location:     "Monterrey",
			Plant:        "North",
			Provider:     domain.ProviderLocal,
		},
	}
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "ana@fleet.example" || in.Role != "system-admin" || in.Plant != "North" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleResult(domain.RoleSystemAdmin), nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/register",
		`{"fullName":"Ana Ruiz","email":"ana@fleet.example","password":"s3cret","role":"system-admin","location":"Monterrey","plant":"North"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed.jwt.value" || resp["expiresAt"] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["fullName"] != "Ana Ruiz" || user["role"] != "SYSTEM_ADMIN" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationError(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	bodies := []string{
		`{"password":"pw"}`,
		`{"email":"not-an-email","password":"pw"}`,
		`{"email":"a@fleet.example"}`,
		`{"email":"a@fleet.example","password":"` + strings.Repeat("x", 73) + `"}`,
	}
	for _, body := range bodies {
		c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", body)
		if code := httpCode(t, h.Register(c)); code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, code)
		}
	}
}

func TestAuthHandler_Register_ValidationMessageUsesJSONNames(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"password":"pw"}`)
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if msg, _ := he.Message.(string); msg != "email is required" {
		t.Fatalf("unexpected message: %v", he.Message)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrDuplicateEmail
		},
	})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"email":"bob@fleet.example","password":"pw"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"email":`)
	if code := httpCode(t, h.Register(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		passwordFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "ana@fleet.example" || password != "s3cret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return sampleResult(domain.RoleAdmin), nil
		},
	})

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/login", `{"email":"ana@fleet.example","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token == "" || resp.User == nil || resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		passwordFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/login", `{"email":"dave@fleet.example","password":"bad"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/login", `{"email":"dave@fleet.example"}`)
	if code := httpCode(t, h.Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Google(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		federatedFn: func(_ context.Context, idToken string) (*ports.AuthResult, error) {
			if idToken != "google-id-token" {
				t.Fatalf("unexpected token: %s", idToken)
			}
			res := sampleResult(domain.RoleUser)
			res.User.Provider = domain.ProviderGoogle
			res.Provisioned = true
			return res, nil
		},
	})

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/google", `{"token":"google-id-token"}`)
	if err := h.Google(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Google_VerificationFailed(t *testing.T) {
	e := newEcho()
	h := NewAuthHandler(&stubAuthService{
		federatedFn: func(context.Context, string) (*ports.AuthResult, error) {
			return nil, domain.ErrFederatedVerificationFailed
		},
	})

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/google", `{"token":"forged"}`)
	if err := h.Google(c); !errors.Is(err, domain.ErrFederatedVerificationFailed) {
		t.Fatalf("expected ErrFederatedVerificationFailed, got %v", err)
	}

	c, _ = jsonRequest(e, http.MethodPost, "/api/auth/google", `{}`)
	if code := httpCode(t, h.Google(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing token, got %d", code)
	}
}

func TestOutcome(t *testing.T) {
	tests := map[string]error{
		"success":             nil,
		"invalid_credentials": domain.ErrInvalidCredentials,
		"duplicate_email":     domain.ErrDuplicateEmail,
		"federated_failed":    domain.ErrFederatedVerificationFailed,
		"invalid_input":       domain.ErrInvalidInput,
		"error":               errors.New("boom"),
	}
	for want, err := range tests {
		if got := outcome(err); got != want {
			t.Errorf("outcome(%v) = %s, want %s", err, got, want)
		}
	}
}
