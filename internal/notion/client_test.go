package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient("secret", Options{BaseURL: srv.URL, RatePerSecond: -1})
	t.Cleanup(c.Close)
	return c
}

func TestClient_Retrieve(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/blocks/abc" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != DefaultVersion {
			t.Errorf("unexpected version header %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"id": "abc", "type": "paragraph", "has_children": false})
	})

	b, err := c.Retrieve(context.Background(), "abc")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if b["type"] != "paragraph" {
		t.Errorf("unexpected payload %v", b)
	}
	if c.Stats().Snapshot().Count != 1 {
		t.Error("expected one latency sample")
	}
}

func TestClient_ListChildrenPaginates(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("page_size") != "100" {
			t.Errorf("expected page_size=100, got %q", r.URL.Query().Get("page_size"))
		}
		cursor := r.URL.Query().Get("start_cursor")
		page := map[string]any{"object": "list"}
		switch cursor {
		case "":
			page["results"] = []any{map[string]any{"id": "1"}, map[string]any{"id": "2"}}
			page["has_more"] = true
			page["next_cursor"] = "c2"
		case "c2":
			page["results"] = []any{map[string]any{"id": "3"}}
			page["has_more"] = false
			page["next_cursor"] = nil
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
		json.NewEncoder(w).Encode(page)
	})

	kids, err := c.ListChildren(context.Background(), "root")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
	var ids []string
	for _, k := range kids {
		ids = append(ids, fmt.Sprint(k["id"]))
	}
	if fmt.Sprint(ids) != "[1 2 3]" {
		t.Errorf("expected children in order, got %v", ids)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		notFound bool
		code     string
	}{
		{"not found", http.StatusNotFound, `{"object":"error","status":404,"code":"object_not_found","message":"Could not find block"}`, true, "object_not_found"},
		{"unauthorized", http.StatusUnauthorized, `{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`, false, "unauthorized"},
		{"plain text", http.StatusBadGateway, "upstream down", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Retrieve(context.Background(), "x")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != tt.status || apiErr.Code != tt.code {
				t.Errorf("unexpected error fields %+v", apiErr)
			}
			if errors.Is(err, ErrNotFound) != tt.notFound {
				t.Errorf("errors.Is(ErrNotFound) = %v, want %v", !tt.notFound, tt.notFound)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	const want = "1234abcd-5678-90ef-1234-567890abcdef"
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"1234abcd567890ef1234567890abcdef", false},
		{want, false},
		{"https://www.notion.so/acme/My-Page-1234abcd567890ef1234567890abcdef", false},
		{"https://www.notion.so/Cafe-Bad-1234abcd567890ef1234567890abcdef/", false},
		{"https://www.notion.so/acme/Page?p=1234abcd567890ef1234567890abcdef&pm=s", false},
		{"not-an-id", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
	if CompactID(want) != "1234abcd567890ef1234567890abcdef" {
		t.Error("CompactID mismatch")
	}
}
