package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/tanpawarit/travel-agent-mesh/agent/contract"
)

func TestClientCallDecodesResult(t *testing.T) {
	t.Parallel()

	var got Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(NewResponse(got.ID, map[string]string{"echo": got.Method}))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, WithHTTPClient(server.Client()), WithIDGenerator(func() string { return "fixed" }))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	var out map[string]string
	if err := client.Call(context.Background(), "tools/list", map[string]any{}, &out); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out["echo"] != "tools/list" {
		t.Fatalf("unexpected result: %#v", out)
	}
	if got.JSONRPC != Version || got.ID != "fixed" {
		t.Fatalf("unexpected request envelope: %+v", got)
	}
}

func TestClientCallReturnsRemoteError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(NewErrorResponse(req.ID, contractx.ErrUnsupportedOperation))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	err = client.Call(context.Background(), "nope", nil, nil)
	var rpcErr *Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Call() error = %v, want *Error", err)
	}
	if rpcErr.Code != CodeUnsupportedOperation {
		t.Fatalf("code = %d, want %d", rpcErr.Code, CodeUnsupportedOperation)
	}
}

func TestNewClientRejectsEmptyEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
