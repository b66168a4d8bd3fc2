package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/handlers"
)

type fakeAuthenticator struct {
	loginFn  func(ctx context.Context, email, password string) (user.User, string, error)
	logoutFn func(ctx context.Context, raw string) error
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (user.User, string, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return user.User{}, "", auth.ErrInvalidCredentials
}

func (f *fakeAuthenticator) Logout(ctx context.Context, raw string) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx, raw)
	}
	return nil
}

func TestLogin(t *testing.T) {
	svc := &fakeAuthenticator{
		loginFn: func(ctx context.Context, email, password string) (user.User, string, error) {
			if email == "john@example.com" && password == "password123" {
				return user.User{ID: 1, Name: "John", Email: email}, "opaque-token", nil
			}
			return user.User{}, "", auth.ErrInvalidCredentials
		},
	}

	h := handlers.NewAuthHandler(svc)

	t.Run("success", func(t *testing.T) {
		r := setupRouter(http.MethodPost, "/login", h.Login)

		w := doJSON(r, http.MethodPost, "/login", `{"email":"john@example.com","password":"password123"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}

		env := decodeEnvelope(t, w)

		if !env.Success || env.Message != "Login successful" {
			t.Fatalf("envelope = %+v", env)
		}

		var payload struct {
			User  user.User `json:"user"`
			Token string    `json:"token"`
		}

		if err := json.Unmarshal(env.Data, &payload); err != nil {
			t.Fatalf("decode data: %v", err)
		}

		if payload.Token != "opaque-token" {
			t.Fatalf("token = %q", payload.Token)
		}

		if payload.User.ID != 1 {
			t.Fatalf("user = %+v", payload.User)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		r := setupRouter(http.MethodPost, "/login", h.Login)

		w := doJSON(r, http.MethodPost, "/login", `{"email":"john@example.com","password":"nope-nope"}`)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401, body=%s", w.Code, w.Body.String())
		}

		env := decodeEnvelope(t, w)

		if env.Success || env.Message != "Invalid credentials" {
			t.Fatalf("envelope = %+v", env)
		}
	})

	t.Run("unknown email matches wrong password", func(t *testing.T) {
		r := setupRouter(http.MethodPost, "/login", h.Login)

		w := doJSON(r, http.MethodPost, "/login", `{"email":"nobody@example.com","password":"password123"}`)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("validation", func(t *testing.T) {
		r := setupRouter(http.MethodPost, "/login", h.Login)

		w := doJSON(r, http.MethodPost, "/login", `{"email":"not-an-email","password":"x"}`)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422, body=%s", w.Code, w.Body.String())
		}

		env := decodeEnvelope(t, w)

		if len(env.Errors["email"]) == 0 {
			t.Fatalf("errors = %v", env.Errors)
		}
	})
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	var revoked string

	svc := &fakeAuthenticator{
		logoutFn: func(ctx context.Context, raw string) error {
			revoked = raw
			return nil
		},
	}

	h := handlers.NewAuthHandler(svc)
	r := setupRouter(http.MethodPost, "/logout", h.Logout)

	// with a bearer token
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer some-token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if revoked != "some-token" {
		t.Fatalf("revoked token = %q", revoked)
	}

	env := decodeEnvelope(t, w)

	if env.Message != "Logout successful" {
		t.Fatalf("message = %q", env.Message)
	}

	// without any token at all
	w = doJSON(r, http.MethodPost, "/logout", "")

	if w.Code != http.StatusOK {
		t.Fatalf("tokenless logout status = %d, want 200", w.Code)
	}
}

func TestMe(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeAuthenticator{})

	t.Run("authenticated", func(t *testing.T) {
		u := user.User{ID: 3, Name: "Jane", Email: "jane@example.com"}

		r := setupRouter(http.MethodGet, "/me", asUser(u, h.Me))

		w := doJSON(r, http.MethodGet, "/me", "")

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}

		env := decodeEnvelope(t, w)

		var got user.User

		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}

		if got.ID != 3 || got.Email != "jane@example.com" {
			t.Fatalf("got = %+v", got)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		r := setupRouter(http.MethodGet, "/me", h.Me)

		w := doJSON(r, http.MethodGet, "/me", "")

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})
}
