package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"microfin-backend/internal/domain/staff"
)

func actorEcho() *echo.Echo {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		a, ok := ActorFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, a)
	}, ActorContext())
	return e
}

func TestActorContext(t *testing.T) {
	e := actorEcho()

	tests := []struct {
		name   string
		id     string
		role   string
		region string
		want   int
	}{
		{"full actor", "a1b2", "agent", "north", http.StatusOK},
		{"admin without region", "root1", "super_admin", "", http.StatusOK},
		{"missing id", "", "agent", "north", http.StatusUnauthorized},
		{"missing role", "a1b2", "", "north", http.StatusUnauthorized},
		{"unknown role", "a1b2", "intern", "north", http.StatusUnauthorized},
		{"capitalized role rejected", "a1b2", "Agent", "north", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.id != "" {
				req.Header.Set(HeaderActorID, tc.id)
			}
			if tc.role != "" {
				req.Header.Set(HeaderActorRole, tc.role)
			}
			if tc.region != "" {
				req.Header.Set(HeaderActorRegion, tc.region)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestActorContext_TrimsWhitespace(t *testing.T) {
	e := actorEcho()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderActorID, "  a1b2  ")
	req.Header.Set(HeaderActorRole, " regional_manager ")
	req.Header.Set(HeaderActorRegion, " north ")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestActorFrom_Unset(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, ok := ActorFrom(c); ok {
		t.Fatal("ActorFrom on bare context should report absence")
	}
	if a, _ := ActorFrom(c); a != (staff.Actor{}) {
		t.Fatalf("zero actor expected, got %+v", a)
	}
}
