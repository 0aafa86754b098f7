package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProxyForwardsRequest(t *testing.T) {
	var gotMethod, gotHeader, gotContentType string
	var gotQuery map[string]string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Request-Source")
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = map[string]string{
			"a": r.URL.Query().Get("a"),
			"b": r.URL.Query().Get("b"),
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	raw, err := c.Proxy(context.Background(), ProxyRequest{
		URL:      srv.URL + "/hook?a=1",
		Method:   "post",
		Headers:  map[string]string{"X-Request-Source": "padlink"},
		Params:   map[string]any{"b": 2},
		JSONBody: map[string]any{"k": "v"},
	})
	if err != nil {
		t.Fatalf("Proxy: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotHeader != "padlink" {
		t.Errorf("X-Request-Source = %q, want padlink", gotHeader)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotQuery["a"] != "1" || gotQuery["b"] != "2" {
		t.Errorf("query = %v, want existing a=1 kept and b=2 merged", gotQuery)
	}

	var body map[string]string
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("decoding forwarded body: %v", err)
	}
	if body["k"] != "v" {
		t.Errorf("body = %v, want k=v", body)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("raw = %s, want upstream body unchanged", raw)
	}
}

func TestProxyDefaultsToGet(t *testing.T) {
	var gotMethod string
	var gotLength int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotLength = r.ContentLength
		w.Write([]byte(`{}`)) //nolint:errcheck // test server
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	if _, err := c.Proxy(context.Background(), ProxyRequest{URL: srv.URL}); err != nil {
		t.Fatalf("Proxy: %v", err)
	}
	if gotMethod != http.MethodGet {
		t.Errorf("method = %q, want GET", gotMethod)
	}
	if gotLength != 0 {
		t.Errorf("content length = %d, want empty body", gotLength)
	}
}

func TestProxyBadURL(t *testing.T) {
	c := newTestClient(t, nil)
	if _, err := c.Proxy(context.Background(), ProxyRequest{URL: "://nope"}); err == nil {
		t.Error("expected error for unparseable url")
	}
}

func TestProxyUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	if _, err := c.Proxy(context.Background(), ProxyRequest{URL: srv.URL}); !errors.Is(err, ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}
