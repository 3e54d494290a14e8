package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/layali-lounge/qrmenu-backend/internal/cart"
	"github.com/layali-lounge/qrmenu-backend/internal/session"
	"github.com/layali-lounge/qrmenu-backend/pkg/config"

	"github.com/google/uuid"
)

type stubVisitLoader struct {
	visits  map[string]*session.Visit
	loadErr error
	saved   []string
}

func (s *stubVisitLoader) Load(_ context.Context, sessionID string) (*session.Visit, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if v, ok := s.visits[sessionID]; ok {
		return v, nil
	}
	return session.NewVisit(), nil
}

func (s *stubVisitLoader) Save(_ context.Context, sessionID string, _ *session.Visit) error {
	s.saved = append(s.saved, sessionID)
	return nil
}

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{CookieName: "qrmenu_session", TTL: time.Hour}
}

func TestVisitSessionAssignsCookieOnFirstRequest(t *testing.T) {
	loader := &stubVisitLoader{}
	handler := VisitSession(loader, sessionTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if VisitFromContext(r.Context()) == nil {
			t.Fatalf("expected a visit on the context")
		}
		if SessionIDFromContext(r.Context()) == "" {
			t.Fatalf("expected a session id on the context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "qrmenu_session" || cookies[0].Value == "" {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestVisitSessionLoadsExistingVisit(t *testing.T) {
	sessionID := uuid.NewString()
	existing := session.NewVisit()
	existing.SetTableNo("T4")
	existing.AddItem(cart.ProductKey(uuid.New()), 2, "")

	loader := &stubVisitLoader{visits: map[string]*session.Visit{sessionID: existing}}
	handler := VisitSession(loader, sessionTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v := VisitFromContext(r.Context())
		if v.TableNo() != "T4" {
			t.Fatalf("expected loaded visit, got table %q", v.TableNo())
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "qrmenu_session", Value: sessionID})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatalf("existing sessions should not be re-issued a cookie")
	}
	if len(loader.saved) != 1 || loader.saved[0] != sessionID {
		t.Fatalf("expected one save for %s, got %v", sessionID, loader.saved)
	}
}

func TestVisitSessionFailsClosedOnLoadError(t *testing.T) {
	loader := &stubVisitLoader{loadErr: errors.New("redis down")}
	called := false
	handler := VisitSession(loader, sessionTestConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if called {
		t.Fatalf("handler must not run without session state")
	}
}
