package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gambit/internal/app/gateway"
	"gambit/internal/configs"
	"gambit/internal/pkg/auth/jwt"
)

type allowAllChecker struct{}

func (allowAllChecker) AreFriends(_ context.Context, _, _ string) (bool, error) {
	return true, nil
}

func newTestDeps(environment string) *AppDeps {
	cfg := &configs.AppConfig{
		Environment:    environment,
		Port:           8080,
		AllowedOrigins: []string{},
		JWTSecret:      "test_secret",
		ClientOrigin:   "http://localhost:5173",
	}

	return &AppDeps{
		Gateway: gateway.NewGateway(cfg.ClientOrigin, allowAllChecker{}),
		Config:  cfg,
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := Router(newTestDeps("development"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health body: %s", rec.Body.String())
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	router := Router(newTestDeps("development"))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Unauthorized") {
		t.Fatalf("unexpected rejection body: %s", rec.Body.String())
	}
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	router := Router(newTestDeps("development"))

	req := httptest.NewRequest(http.MethodGet, "/ws?token=not-a-token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestMintTokenDevelopmentOnly(t *testing.T) {
	body := `{"userId":"u1","username":"alice","email":"alice@example.com"}`

	// Development: token issued and parseable.
	router := Router(newTestDeps("development"))
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("dev mint returned %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unparseable mint response: %v", err)
	}

	claims, err := jwt.ParseToken(envelope.Data.Token, "test_secret")
	if err != nil {
		t.Fatalf("minted token does not parse: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("minted token carries wrong identity: %+v", claims)
	}

	// Production: the route is not registered.
	router = Router(newTestDeps("production"))
	req = httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatal("token mint reachable in production")
	}
}

func TestMintTokenRejectsIncompleteIdentity(t *testing.T) {
	router := Router(newTestDeps("development"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(`{"userId":"u1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unparseable response: %v", err)
	}
	if envelope.Code == 0 {
		t.Fatal("incomplete identity accepted")
	}
}
