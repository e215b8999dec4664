// ABOUTME: Tests for the upstream identity client
// ABOUTME: Verifies the error taxonomy: unavailable vs rejected, with detail extraction

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/duospend/gateway/models"
)

func newClientFor(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second)
}

func TestAuthenticate_Success(t *testing.T) {
	c := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"acc","refresh_token":"ref","token_type":"bearer","expires_in":900}`))
	})

	pair, err := c.Authenticate(context.Background(), models.LoginRequest{EmailOrUsername: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if pair.AccessToken != "acc" || pair.RefreshToken != "ref" {
		t.Errorf("pair = %+v", pair)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantUnavail   bool
		wantDetail    string
	}{
		{"500 is unavailable", http.StatusInternalServerError, "oops", true, ""},
		{"503 is unavailable", http.StatusServiceUnavailable, "", true, ""},
		{"401 is rejected with detail", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`, false, "Invalid credentials"},
		{"422 is rejected", http.StatusUnprocessableEntity, `{"detail":"Password too short"}`, false, "Password too short"},
		{"rejection with malformed body", http.StatusBadRequest, "not json", false, "request rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Authenticate(context.Background(), models.LoginRequest{EmailOrUsername: "a", Password: "b"})
			if err == nil {
				t.Fatal("Authenticate succeeded on an error response")
			}

			if tt.wantUnavail {
				if !errors.Is(err, ErrUnavailable) {
					t.Errorf("error = %v, want ErrUnavailable", err)
				}
				return
			}

			var rejected *RejectedError
			if !errors.As(err, &rejected) {
				t.Fatalf("error = %v, want RejectedError", err)
			}
			if rejected.StatusCode != tt.status || rejected.Detail != tt.wantDetail {
				t.Errorf("rejection = %+v, want status %d detail %q", rejected, tt.status, tt.wantDetail)
			}
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewClient(srv.URL, time.Second)

	_, err := c.Authenticate(context.Background(), models.LoginRequest{EmailOrUsername: "a", Password: "b"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestRefresh_MissingTokensInResponse(t *testing.T) {
	c := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"","refresh_token":""}`))
	})

	_, err := c.Refresh(context.Background(), "tok")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable for token-less 200", err)
	}
}

func TestFetchIdentity_SendsBearerToken(t *testing.T) {
	c := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer acc" {
			t.Errorf("Authorization = %q, want Bearer acc", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"u1","username":"alice","email":"alice@example.com"}`))
	})

	identity, err := c.FetchIdentity(context.Background(), "acc")
	if err != nil {
		t.Fatalf("FetchIdentity failed: %v", err)
	}
	if identity.Username != "alice" {
		t.Errorf("identity = %+v, want alice", identity)
	}
}

func TestLogout_AcceptsNoContent(t *testing.T) {
	c := newClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Logout(context.Background(), "acc"); err != nil {
		t.Errorf("Logout failed on 204: %v", err)
	}
}
