package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/trainerhub/poketrainer/internal"
	"github.com/trainerhub/poketrainer/testutil"
)

func newTestClient(t *testing.T, token string) (*Client, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	return NewClient(fb.URL()+"/", 5*time.Second, StaticToken(token)), fb
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := NewClient("http://example.com/api/v1/", time.Second, nil)
	if c.BaseURL() != "http://example.com/api/v1" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
}

func TestClient_NoTokenSkipsRequest(t *testing.T) {
	c, fb := newTestClient(t, "")

	_, err := c.Currency(context.Background(), "u1")
	if !errors.Is(err, internal.ErrLoginRequired) {
		t.Fatalf("Currency() error = %v, want ErrLoginRequired", err)
	}
	if n := len(fb.Requests()); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
}

func TestClient_BearerHeader(t *testing.T) {
	c, fb := newTestClient(t, "tok-123")
	fb.JSON(http.MethodGet, "/currency/u1/get", http.StatusOK, map[string]interface{}{
		"coin_name":  "PokeCoin",
		"coin_value": 250,
	})

	cur, err := c.Currency(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Currency() error = %v", err)
	}
	if cur.CoinName != "PokeCoin" || cur.CoinValue != 250 {
		t.Errorf("Currency() = %+v", cur)
	}
	if got := fb.LastRequest(t).Authorization; got != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestClient_PublicCallHasNoAuthorization(t *testing.T) {
	c, fb := newTestClient(t, "tok")
	fb.JSON(http.MethodGet, "/kamehameha/card", http.StatusOK, []map[string]interface{}{
		{"name": "Pikachu", "price": 10},
	})

	if _, err := c.Catalog(context.Background(), internal.KindCard); err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if got := fb.LastRequest(t).Authorization; got != "" {
		t.Errorf("Authorization = %q, want none", got)
	}
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       interface{}
		wantMsg    string
		wantUnauth bool
		wantForbid bool
	}{
		{"unauthorized", http.StatusUnauthorized, map[string]string{"message": "invalid token"}, "invalid token", true, false},
		{"forbidden", http.StatusForbidden, map[string]string{"error": "admins only"}, "admins only", false, true},
		{"server error", http.StatusInternalServerError, map[string]string{}, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fb := newTestClient(t, "tok")
			fb.JSON(http.MethodGet, "/market/all", tt.status, tt.body)

			_, err := c.MarketAll(context.Background())
			apiErr, ok := internal.AsAPIError(err)
			if !ok {
				t.Fatalf("MarketAll() error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMsg {
				t.Errorf("APIError = %+v", apiErr)
			}
			if apiErr.IsUnauthorized() != tt.wantUnauth || apiErr.IsForbidden() != tt.wantForbid {
				t.Errorf("IsUnauthorized/IsForbidden = %v/%v", apiErr.IsUnauthorized(), apiErr.IsForbidden())
			}
			if apiErr.Method != http.MethodGet || apiErr.Path != "/market/all" {
				t.Errorf("APIError method/path = %s %s", apiErr.Method, apiErr.Path)
			}
		})
	}
}

func TestClient_TransportErrorIsNotAPIError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second, StaticToken("tok"))
	_, err := c.UserAuth(context.Background())
	if err == nil {
		t.Fatal("UserAuth() error = nil, want transport error")
	}
	if _, ok := internal.AsAPIError(err); ok {
		t.Errorf("transport failure classified as APIError: %v", err)
	}
}

func TestClient_Ping(t *testing.T) {
	c, _ := newTestClient(t, "")
	// the fake backend answers 404 for "/"; any answer means reachable
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}

	down := NewClient("http://127.0.0.1:1", time.Second, nil)
	if err := down.Ping(context.Background()); err == nil {
		t.Error("Ping() on a closed port error = nil")
	}
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"bare array", `[{"name":"a"},{"name":"b"}]`, []string{"a", "b"}},
		{"data wrapper", `{"success":true,"data":[{"name":"a"}]}`, []string{"a"}},
		{"named wrapper", `{"success":true,"cards":[{"name":"x"}]}`, []string{"x"}},
		{"empty body", ``, nil},
		{"no list", `{"success":true}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var items []internal.CatalogItem
			if err := decodeList([]byte(tt.body), &items); err != nil {
				t.Fatalf("decodeList() error = %v", err)
			}
			var names []string
			for _, it := range items {
				names = append(names, it.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") {
				t.Errorf("decodeList() names = %v, want %v", names, tt.want)
			}
		})
	}
}
