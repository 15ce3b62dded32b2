package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/idpkit/keycloak-go/models"
)

func TestListFederatedIdentities(t *testing.T) {
	userID := uuid.MustParse("7d2f1a3c-5e6b-4c8d-9a0f-deadbeef1001")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mockAdminTokenResponse(w, r) {
			return
		}
		if r.URL.Path != testAdminPath+"/users/"+userID.String()+"/federated-identity" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"identityProvider":"google","userId":"g-123","userName":"alice@gmail.com"},
			{"identityProvider":"github","userId":"gh-456","userName":"alice"}
		]`))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	identities, err := adapter.ListFederatedIdentities(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(identities) != 2 {
		t.Fatalf("got %d identities, want 2", len(identities))
	}
	if identities[0].Provider != "google" || identities[0].UserID != "g-123" {
		t.Errorf("unexpected identity: %+v", identities[0])
	}
}

func TestReconcileFederatedIdentities_SkipsUnlinkedProviders(t *testing.T) {
	userID := uuid.MustParse("7d2f1a3c-5e6b-4c8d-9a0f-deadbeef1002")

	var upserts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mockAdminTokenResponse(w, r) {
			return
		}
		base := testAdminPath + "/users/" + userID.String() + "/federated-identity"
		switch {
		case r.Method == http.MethodGet && r.URL.Path == base:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"identityProvider":"google","userId":"old-id","userName":"old-name"}]`))
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, base+"/"):
			provider := strings.TrimPrefix(r.URL.Path, base+"/")
			upserts = append(upserts, provider)

			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["identityProvider"] != provider {
				t.Errorf("identityProvider = %v in body for provider %s", body["identityProvider"], provider)
			}
			if provider == "google" && body["userId"] != "g-new" {
				t.Errorf("userId = %v, want g-new", body["userId"])
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	err := adapter.reconcileFederatedIdentities(context.Background(), userID, []models.FederatedIdentity{
		{Provider: "google", UserID: "g-new", UserName: "alice@gmail.com"},
		{Provider: "facebook", UserID: "fb-new", UserName: "alice.fb"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only the already linked provider is written; the facebook link has no
	// existing counterpart and is skipped, not created.
	if len(upserts) != 1 || upserts[0] != "google" {
		t.Errorf("upserts = %v, want [google]", upserts)
	}
}

func TestReconcileFederatedIdentities_AbortsOnFirstFailure(t *testing.T) {
	userID := uuid.MustParse("7d2f1a3c-5e6b-4c8d-9a0f-deadbeef1003")

	var upserts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mockAdminTokenResponse(w, r) {
			return
		}
		base := testAdminPath + "/users/" + userID.String() + "/federated-identity"
		switch {
		case r.Method == http.MethodGet && r.URL.Path == base:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"identityProvider":"google","userId":"old-g","userName":"g"},
				{"identityProvider":"github","userId":"old-gh","userName":"gh"}
			]`))
		case r.Method == http.MethodPost:
			provider := strings.TrimPrefix(r.URL.Path, base+"/")
			upserts = append(upserts, provider)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"unknown_error"}`))
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	err := adapter.reconcileFederatedIdentities(context.Background(), userID, []models.FederatedIdentity{
		{Provider: "google", UserID: "g-new"},
		{Provider: "github", UserID: "gh-new"},
	})
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("expected ErrServerError, got %v", err)
	}

	// The first failed write aborts the run before the second provider.
	if len(upserts) != 1 || upserts[0] != "google" {
		t.Errorf("upserts = %v, want [google]", upserts)
	}
}

func TestRegisterUser_ReconcilesIdentities(t *testing.T) {
	userID := uuid.MustParse("7d2f1a3c-5e6b-4c8d-9a0f-deadbeef1005")

	var upserts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mockAdminTokenResponse(w, r) {
			return
		}
		base := testAdminPath + "/users/" + userID.String() + "/federated-identity"
		switch {
		case r.Method == http.MethodPost && r.URL.Path == testAdminPath+"/users":
			w.Header().Set("Location", testAdminPath+"/users/"+userID.String())
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == base:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"identityProvider":"google","userId":"old","userName":"old"}]`))
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, base+"/"):
			upserts = append(upserts, strings.TrimPrefix(r.URL.Path, base+"/"))
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	id, err := adapter.RegisterUser(context.Background(), models.WriteUser{
		Username: "alice",
		Email:    "alice@example.com",
		Enabled:  true,
		FederatedIdentities: []models.FederatedIdentity{
			{Provider: "google", UserID: "g-new", UserName: "alice@gmail.com"},
			{Provider: "facebook", UserID: "fb-new", UserName: "alice.fb"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The reconciler runs against the id parsed from the Location header and
	// writes only the already linked provider.
	if id != userID {
		t.Errorf("id = %s, want %s", id, userID)
	}
	if len(upserts) != 1 || upserts[0] != "google" {
		t.Errorf("upserts = %v, want [google]", upserts)
	}
}

func TestUpdateUser_ReconcilesIdentities(t *testing.T) {
	userID := uuid.MustParse("7d2f1a3c-5e6b-4c8d-9a0f-deadbeef1004")

	var upserts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mockAdminTokenResponse(w, r) {
			return
		}
		base := testAdminPath + "/users/" + userID.String()
		switch {
		case r.Method == http.MethodPut && r.URL.Path == base:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == base+"/federated-identity":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"identityProvider":"google","userId":"old","userName":"old"}]`))
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, base+"/federated-identity/"):
			upserts++
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	err := adapter.UpdateUser(context.Background(), models.WriteUser{
		ID:       userID,
		Username: "alice",
		FederatedIdentities: []models.FederatedIdentity{
			{Provider: "google", UserID: "g-new", UserName: "alice@gmail.com"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upserts != 1 {
		t.Errorf("upserts = %d, want 1", upserts)
	}
}
