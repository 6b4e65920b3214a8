package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/trainerhub/poketrainer/internal"
	"github.com/trainerhub/poketrainer/internal/catalog"
	"github.com/trainerhub/poketrainer/testutil"
)

func cardListing(n int) []map[string]interface{} {
	items := make([]map[string]interface{}, n)
	for i := range items {
		items[i] = map[string]interface{}{"name": fmt.Sprintf("Card %02d", i), "price": 10 * (i + 1)}
	}
	return items
}

func TestCardsList_Pages(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	dir := t.TempDir()
	loginAs(t, fb, dir, false)
	allowUser(fb)
	fb.JSON(http.MethodGet, "/kamehameha/card", http.StatusOK, cardListing(10))

	out, err := run(t, fb, dir, "", "cards", "list")
	if err != nil {
		t.Fatalf("cards list error = %v", err)
	}
	if !strings.Contains(out, "Card 00") || !strings.Contains(out, "Card 07") {
		t.Errorf("page 1 output missing entries: %q", out)
	}
	if strings.Contains(out, "Card 08") {
		t.Errorf("page 1 should hold 8 entries: %q", out)
	}
	if !strings.Contains(out, "Page 1 of 2") {
		t.Errorf("missing page footer: %q", out)
	}

	out, err = run(t, fb, dir, "", "cards", "list", "--page", "2")
	if err != nil {
		t.Fatalf("cards list --page 2 error = %v", err)
	}
	if !strings.Contains(out, "Card 09") || strings.Contains(out, "Card 00") {
		t.Errorf("page 2 output = %q", out)
	}
}

func TestCardsList_PageOutOfRange(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	dir := t.TempDir()
	loginAs(t, fb, dir, false)
	allowUser(fb)
	fb.JSON(http.MethodGet, "/kamehameha/card", http.StatusOK, cardListing(3))

	_, err := run(t, fb, dir, "", "cards", "list", "--page", "5")
	if !errors.Is(err, catalog.ErrPageOutOfRange) {
		t.Errorf("error = %v, want ErrPageOutOfRange", err)
	}
}

func TestCatalogBuy(t *testing.T) {
	tests := []struct {
		name string
		args []string
		path string
	}{
		{"card by name", []string{"cards", "buy", "Pikachu Card"}, "/kamehameha/buy_card/Pikachu Card"},
		{"background by name", []string{"backgrounds", "buy", "Forest"}, "/kamehameha/buy_background/Forest"},
		{"title by index", []string{"titles", "buy", "2"}, "/kamehameha/buy_title/2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend(t)
			dir := t.TempDir()
			loginAs(t, fb, dir, false)
			allowUser(fb)
			fb.JSON(http.MethodPost, tt.path, http.StatusOK, map[string]bool{"success": true})

			out, err := run(t, fb, dir, "", tt.args...)
			if err != nil {
				t.Fatalf("buy error = %v", err)
			}
			if !strings.Contains(out, "Bought") {
				t.Errorf("output = %q", out)
			}
			req := fb.LastRequest(t)
			if req.Path != tt.path || req.Authorization != "Bearer tok-ash" {
				t.Errorf("request = %s %s (%q)", req.Method, req.Path, req.Authorization)
			}
		})
	}
}

func TestTitlesBuy_RejectsName(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	dir := t.TempDir()
	loginAs(t, fb, dir, false)
	allowUser(fb)

	_, err := run(t, fb, dir, "", "titles", "buy", "Champion")
	if err == nil || !strings.Contains(err.Error(), "by index") {
		t.Errorf("error = %v, want index error", err)
	}
	if n := countRequests(fb, http.MethodPost, "/kamehameha/buy_title/Champion"); n != 0 {
		t.Errorf("issued %d purchase request(s)", n)
	}
}

func TestCatalog_RequiresLogin(t *testing.T) {
	fb := testutil.NewFakeBackend(t)

	_, err := run(t, fb, t.TempDir(), "", "cards", "list")
	if !errors.Is(err, internal.ErrLoginRequired) {
		t.Errorf("error = %v, want ErrLoginRequired", err)
	}
	if n := len(fb.Requests()); n != 0 {
		t.Errorf("backend received %d requests, want 0", n)
	}
}

func TestFormatCoins(t *testing.T) {
	tests := map[float64]string{10: "10", 2.5: "2.5", 0: "0"}
	for in, want := range tests {
		if got := formatCoins(in); got != want {
			t.Errorf("formatCoins(%v) = %q, want %q", in, got, want)
		}
	}
}
