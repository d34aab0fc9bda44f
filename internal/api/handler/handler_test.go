package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accessdesk/mediation-gateway/internal/core/service"
	"github.com/accessdesk/mediation-gateway/internal/core/validation"
	"github.com/accessdesk/mediation-gateway/internal/gateway"
	"github.com/accessdesk/mediation-gateway/internal/infrastructure/db/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }

// newTestGateway wires a gateway over an in-memory store.
func newTestGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	store := memory.NewStore()
	v := validation.New()
	log := zerolog.Nop()

	return gateway.New(
		service.NewAccountService(store.Accounts(), plainHasher{}, v, log),
		service.NewRoleService(store.Roles(), store.Accounts(), v, service.DeleteAllow, log),
		service.NewRoleResolver(store.Roles(), false),
		service.NewSeedService(store.Roles(), store.Accounts(), plainHasher{}, nil, service.SeedAccount{
			Email:     "admin@example.com",
			Password:  "admin123",
			FirstName: "Admin",
			LastName:  "User",
		}, log),
		log,
	)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}
