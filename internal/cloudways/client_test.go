package cloudways

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fakelit/scalewatch/internal/errors"
	"github.com/fakelit/scalewatch/internal/sizing"
)

// newTestAPI serves the OAuth endpoint plus handler for everything else.
func newTestAPI(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token exchange method = %s, want POST", r.Method)
		}
		_ = r.ParseForm()
		if r.PostForm.Get("email") != "ops@fakelit.com" || r.PostForm.Get("api_key") != "key-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-abc",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/", handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := NewClient("ops@fakelit.com", "key-1", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return srv, client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient("", "key"); err == nil {
		t.Error("NewClient with empty email should fail")
	}
	if _, err := NewClient("a@b.com", ""); err == nil {
		t.Error("NewClient with empty api key should fail")
	}
}

func TestListApps(t *testing.T) {
	var tokenChecks int32
	_, client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app" {
			t.Errorf("path = %q, want /app", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "Bearer tok-abc" {
			atomic.AddInt32(&tokenChecks, 1)
		}
		_ = json.NewEncoder(w).Encode(appListResponse{Apps: []App{
			{ID: "1", Label: "store-a", Application: "magento", ServerID: "srv-1"},
			{ID: "2", Label: "blog", Application: "wordpress", ServerID: "srv-1"},
			{ID: "3", Label: "store-b", Application: "magento", ServerID: "srv-2"},
		}})
	})

	apps, err := client.ListApps(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("ListApps() error = %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("ListApps() returned %d apps, want 2 on srv-1", len(apps))
	}
	if atomic.LoadInt32(&tokenChecks) != 1 {
		t.Error("request was not sent with the exchanged bearer token")
	}
}

func TestTokenCached(t *testing.T) {
	var apiCalls int32
	_, client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
		_ = json.NewEncoder(w).Encode(appListResponse{})
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.ListApps(ctx, "srv-1"); err != nil {
			t.Fatalf("ListApps() error = %v", err)
		}
	}
	// 3 API calls means the token exchange ran once, not per request.
	if got := atomic.LoadInt32(&apiCalls); got != 3 {
		t.Errorf("api calls = %d, want 3", got)
	}
}

func TestScaleServer(t *testing.T) {
	var got scaleRequest
	_, client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/server/scaleServer" {
			t.Errorf("path = %q, want /server/scaleServer", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode scale request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	spec := sizing.ResourceSpec{RAMGB: 83, CPUCores: 17, StorageGB: 800}
	if err := client.ScaleServer(context.Background(), "srv-1", spec); err != nil {
		t.Fatalf("ScaleServer() error = %v", err)
	}
	if got.ServerID != "srv-1" || got.RAMGB != 83 || got.CPUCores != 17 || got.StorageGB != 800 {
		t.Errorf("scale request = %+v", got)
	}
}

func TestScaleServerRejected(t *testing.T) {
	_, client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"insufficient capacity in region"}`))
	})

	err := client.ScaleServer(context.Background(), "srv-1", sizing.ResourceSpec{})
	if !errors.Is(err, errors.ErrScaleRejected) {
		t.Fatalf("ScaleServer() error = %v, want ErrScaleRejected", err)
	}
	if errors.Is(err, errors.ErrProviderUnavailable) {
		t.Error("a rejection must not look like a transient transport failure")
	}
}

func TestScaleServerUnauthorized(t *testing.T) {
	_, client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	err := client.ScaleServer(context.Background(), "srv-1", sizing.ResourceSpec{})
	if !errors.Is(err, errors.ErrProviderUnauthorized) {
		t.Fatalf("ScaleServer() error = %v, want ErrProviderUnauthorized", err)
	}
}

func TestScaleServerUnavailable(t *testing.T) {
	srv, client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {})

	// Token first, while the server is still up.
	if _, err := client.ServerStatus(context.Background(), "srv-x"); err == nil {
		t.Fatal("expected not-found error for unknown server")
	}
	srv.Close()

	err := client.ScaleServer(context.Background(), "srv-1", sizing.ResourceSpec{})
	if !errors.Is(err, errors.ErrProviderUnavailable) {
		t.Fatalf("ScaleServer() error = %v, want ErrProviderUnavailable", err)
	}
}

func TestServerStatus(t *testing.T) {
	_, client := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/server" {
			t.Errorf("path = %q, want /server", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(serverListResponse{Servers: []Server{
			{ID: "srv-1", Label: "prod", Status: "running", Scaling: true},
			{ID: "srv-2", Label: "staging", Status: "running", Scaling: false},
		}})
	})

	srv, err := client.ServerStatus(context.Background(), "srv-1")
	if err != nil {
		t.Fatalf("ServerStatus() error = %v", err)
	}
	if srv.Ready() {
		t.Error("a server mid-scale must not report ready")
	}

	srv, err = client.ServerStatus(context.Background(), "srv-2")
	if err != nil {
		t.Fatalf("ServerStatus() error = %v", err)
	}
	if !srv.Ready() {
		t.Error("a running idle server must report ready")
	}
}

func TestServerReady(t *testing.T) {
	tests := []struct {
		server Server
		want   bool
	}{
		{Server{Status: "running", Scaling: false}, true},
		{Server{Status: "running", Scaling: true}, false},
		{Server{Status: "stopped", Scaling: false}, false},
	}
	for _, tt := range tests {
		if got := tt.server.Ready(); got != tt.want {
			t.Errorf("Ready() for %+v = %v, want %v", tt.server, got, tt.want)
		}
	}
}
