package handlers_test

import (
	"net/http"
	"testing"

	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindProbe struct {
	Name  string `json:"name" binding:"required,max=10"`
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"omitempty,oneof=a b"`
	Note  string `json:"note" binding:"omitempty,min=3"`
}

func bindHandler(ctx *gin.Context) {
	var req bindProbe

	if !handlers.BindJSON(ctx, &req) {
		return
	}

	handlers.RespondData(ctx, http.StatusOK, req)
}

func TestBindJSONMessages(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantField   string
		wantMessage string
	}{
		{
			name:        "required",
			body:        `{"email":"a@b.com"}`,
			wantField:   "name",
			wantMessage: "The name field is required.",
		},
		{
			name:        "email format",
			body:        `{"name":"x","email":"nope"}`,
			wantField:   "email",
			wantMessage: "The email must be a valid email address.",
		},
		{
			name:        "max length",
			body:        `{"name":"this name is far too long","email":"a@b.com"}`,
			wantField:   "name",
			wantMessage: "The name must not be greater than 10 characters.",
		},
		{
			name:        "min length",
			body:        `{"name":"x","email":"a@b.com","note":"ab"}`,
			wantField:   "note",
			wantMessage: "The note must be at least 3 characters.",
		},
		{
			name:        "oneof",
			body:        `{"name":"x","email":"a@b.com","code":"z"}`,
			wantField:   "code",
			wantMessage: "The selected code is invalid.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(http.MethodPost, "/probe", bindHandler)

			w := doJSON(r, http.MethodPost, "/probe", tc.body)

			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422, body=%s", w.Code, w.Body.String())
			}

			env := decodeEnvelope(t, w)

			got := env.Errors[tc.wantField]

			if len(got) == 0 || got[0] != tc.wantMessage {
				t.Fatalf("errors[%s] = %v, want %q", tc.wantField, got, tc.wantMessage)
			}
		})
	}
}

func TestBindJSONMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "broken syntax", body: `{"name":`},
		{name: "type mismatch", body: `{"name":42,"email":"a@b.com"}`},
		{name: "empty body", body: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := setupRouter(http.MethodPost, "/probe", bindHandler)

			w := doJSON(r, http.MethodPost, "/probe", tc.body)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body=%s", w.Code, w.Body.String())
			}

			env := decodeEnvelope(t, w)

			if env.Success || env.Message != "Invalid request body" {
				t.Fatalf("envelope = %+v", env)
			}
		})
	}
}
