package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"felix/internal/models"
	"felix/internal/store"
)

func TestSyncUserExisting(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		users: stubUserStore{
			getByKeycloakIDFn: func(ctx context.Context, keycloakID string) (models.User, error) {
				return models.User{ID: "user-1", KeycloakID: keycloakID, Username: "alice"}, nil
			},
		},
	})
	req := withTestPrincipal(httptest.NewRequest(http.MethodPost, "/user/sync", nil))
	rr := httptest.NewRecorder()
	handler.SyncUser(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestSyncUserCreates(t *testing.T) {
	created := false
	lookups := 0
	handler := newTestHandler(testHandlerOptions{
		users: stubUserStore{
			getByKeycloakIDFn: func(ctx context.Context, keycloakID string) (models.User, error) {
				lookups++
				if lookups == 1 {
					return models.User{}, sql.ErrNoRows
				}
				return models.User{ID: "user-1", KeycloakID: keycloakID, Username: "alice"}, nil
			},
			createFn: func(ctx context.Context, tx store.Execer, id, keycloakID, username, email, displayName string) error {
				created = true
				if keycloakID != "kc-1" || username != "alice" {
					t.Fatalf("unexpected create: %q %q", keycloakID, username)
				}
				return nil
			},
		},
	})
	req := withTestPrincipal(httptest.NewRequest(http.MethodPost, "/user/sync", nil))
	rr := httptest.NewRecorder()
	handler.SyncUser(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if !created {
		t.Fatal("expected the user to be created")
	}
}

func TestMeIncludesWalletWhenPresent(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{
		wallet: stubWalletService{
			walletFn: func(ctx context.Context, userID string) (models.Wallet, error) {
				return models.Wallet{PublicKey: "GPUB"}, nil
			},
		},
	})
	req := withTestPrincipal(httptest.NewRequest(http.MethodGet, "/user/me", nil))
	rr := httptest.NewRecorder()
	handler.Me(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if payload["public_key"] != "GPUB" || payload["username"] != "alice" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestMeWithoutWallet(t *testing.T) {
	handler := newTestHandler(testHandlerOptions{})
	req := withTestPrincipal(httptest.NewRequest(http.MethodGet, "/user/me", nil))
	rr := httptest.NewRecorder()
	handler.Me(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if _, ok := payload["public_key"]; ok {
		t.Fatalf("wallet key must be absent: %#v", payload)
	}
}
