package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kerbside-app/kerbside-backend/pkg/logger"
	"github.com/kerbside-app/kerbside-backend/pkg/types"
)

func TestRequireRole(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "middleware-test"})
	handler := RequireRole("admin", logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin passes", "admin", http.StatusNoContent},
		{"customer blocked", "customer", http.StatusForbidden},
		{"missing role blocked", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/items", nil)
			ctx := WithUserID(req.Context(), "user-1")
			if tc.role != "" {
				ctx = WithRole(ctx, tc.role)
			}
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantStatus == http.StatusForbidden {
				var envelope types.ErrorEnvelope
				if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
					t.Fatalf("decode error envelope: %v", err)
				}
				if envelope.Error.Code != "FORBIDDEN" {
					t.Fatalf("unexpected error code %q", envelope.Error.Code)
				}
			}
		})
	}
}

func TestContextAccessors(t *testing.T) {
	t.Parallel()

	ctx := WithRole(WithUserID(context.Background(), "user-1"), "admin")
	if got := UserIDFromContext(ctx); got != "user-1" {
		t.Fatalf("unexpected user id %q", got)
	}
	if got := RoleFromContext(ctx); got != "admin" {
		t.Fatalf("unexpected role %q", got)
	}

	if got := UserIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}
	if got := AccessIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty access id, got %q", got)
	}
}
