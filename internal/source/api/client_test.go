package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blueshirts/cofi/internal/source"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "default-token", 5*time.Second, time.Minute), srv
}

func TestLogin(t *testing.T) {
	var logins atomic.Int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Email    string         `json:"email"`
			Password string         `json:"password"`
			Args     map[string]any `json:"args"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode login body: %v", err)
		}
		if body.Email != "user@example.com" || body.Password != "secret" {
			t.Errorf("unexpected login body: %+v", body)
		}
		if body.Args["api-token"] != "default-token" {
			t.Errorf("expected default app token, got %v", body.Args["api-token"])
		}
		logins.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"error": "no-error", "uid": 123, "token": "session-token"})
	}))

	creds, err := client.Login(context.Background(), "user@example.com", "secret", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if creds.UID != 123 || creds.Token != "session-token" || creds.APIToken != "default-token" {
		t.Fatalf("creds = %+v", creds)
	}

	// A second login reuses the cached session.
	if _, err := client.Login(context.Background(), "user@example.com", "secret", ""); err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if got := logins.Load(); got != 1 {
		t.Fatalf("upstream logins = %d, want 1", got)
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected")
	}))
	for _, c := range []struct{ user, pass string }{{"", "secret"}, {"user@example.com", ""}, {"", ""}} {
		_, err := client.Login(context.Background(), c.user, c.pass, "")
		if !errors.Is(err, source.ErrMissingCredentials) {
			t.Fatalf("Login(%q, %q): expected ErrMissingCredentials, got %v", c.user, c.pass, err)
		}
	}
}

func TestLoginRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "bad-credentials"})
	}))
	_, err := client.Login(context.Background(), "user@example.com", "wrong", "")
	if !errors.Is(err, source.ErrAuthRejected) {
		t.Fatalf("expected ErrAuthRejected, got %v", err)
	}
}

func TestTransactions(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-all-transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Args source.Credentials `json:"args"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Args.UID != 123 || body.Args.Token != "session-token" {
			t.Errorf("unexpected args: %+v", body.Args)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"error": "no-error",
			"transactions": []map[string]any{
				{"transaction-id": "1", "merchant": "Employer", "amount": 50000, "transaction-time": "2016-01-15T00:00:00.000Z"},
				{"transaction-id": "2", "merchant": "Grocer", "amount": -1200, "transaction-time": "2016-01-16T00:00:00.000Z"},
			},
		})
	}))

	creds := source.Credentials{UID: 123, Token: "session-token", APIToken: "default-token"}
	transactions, err := client.Transactions(context.Background(), creds)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("got %d transactions", len(transactions))
	}
	if transactions[0].ID != "1" || transactions[0].Amount != 50000 {
		t.Fatalf("transactions[0] = %+v", transactions[0])
	}
	if transactions[1].Merchant != "Grocer" {
		t.Fatalf("transactions[1] = %+v", transactions[1])
	}
}

func TestAccounts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get-accounts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"error": "no-error",
			"accounts": []map[string]any{
				{"account-id": "nonce:checking", "name": "Checking", "balance": 120000},
			},
		})
	}))

	accounts, err := client.Accounts(context.Background(), source.Credentials{UID: 123})
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "Checking" || accounts[0].Balance != 120000 {
		t.Fatalf("accounts = %+v", accounts)
	}
}

func TestUpstreamErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		_, err := client.Transactions(context.Background(), source.Credentials{})
		if !errors.Is(err, source.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("application error code", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"error": "internal-failure"})
		}))
		_, err := client.Transactions(context.Background(), source.Credentials{})
		if !errors.Is(err, source.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("missing error code", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"transactions": []any{}})
		}))
		_, err := client.Transactions(context.Background(), source.Credentials{})
		if !errors.Is(err, source.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "tok", time.Second, time.Minute)
		_, err := client.Transactions(context.Background(), source.Credentials{})
		if !errors.Is(err, source.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
	})
}
