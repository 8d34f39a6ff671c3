package anki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInvokeReturnsResult(t *testing.T) {
	conn := startFakeEndpoint(t, func(action string, params json.RawMessage) (any, string) {
		if action != "deckNames" {
			t.Errorf("unexpected action %q", action)
		}
		if string(params) != "{}" {
			t.Errorf("expected empty params, got %s", params)
		}
		return []string{"Default"}, ""
	})

	names, err := New(conn).DeckNames(context.Background())
	if err != nil {
		t.Fatalf("deckNames: %v", err)
	}
	if len(names) != 1 || names[0] != "Default" {
		t.Fatalf("unexpected deck names: %v", names)
	}
}

func TestInvokeServiceError(t *testing.T) {
	conn := startFakeEndpoint(t, func(action string, params json.RawMessage) (any, string) {
		return nil, "deck already exists"
	})

	_, err := New(conn).CreateDeck(context.Background(), "Default")
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	if callErr.Action != "createDeck" {
		t.Fatalf("unexpected action: %q", callErr.Action)
	}
	if callErr.Message != "deck already exists" {
		t.Fatalf("unexpected message: %q", callErr.Message)
	}
	if callErr.Err != nil {
		t.Fatalf("service-reported errors carry no cause, got %v", callErr.Err)
	}
}

func TestInvokeHTTPStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(ts.Close)

	_, err := New(connFromURL(t, ts.URL)).Invoke(context.Background(), "deckNames", nil)
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	if callErr.Action != "deckNames" {
		t.Fatalf("unexpected action: %q", callErr.Action)
	}
	if !strings.Contains(callErr.Message, "404") {
		t.Fatalf("message should mention the HTTP status: %q", callErr.Message)
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) || transportErr.Kind != TransportHTTPStatus || transportErr.Status != 404 {
		t.Fatalf("expected wrapped TransportError{HTTPStatus, 404}, got %+v", transportErr)
	}
}

func TestInvokeUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	conn := connFromURL(t, ts.URL)
	ts.Close()

	_, err := New(conn).Invoke(context.Background(), "sync", nil)
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	if callErr.Action != "sync" {
		t.Fatalf("unexpected action: %q", callErr.Action)
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) || transportErr.Kind != TransportUnreachable {
		t.Fatalf("expected wrapped TransportError{Unreachable}, got %+v", transportErr)
	}
}

func TestInvokeMalformedReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result`))
	}))
	t.Cleanup(ts.Close)

	_, err := New(connFromURL(t, ts.URL)).Invoke(context.Background(), "getTags", nil)
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	if callErr.Action != "getTags" {
		t.Fatalf("unexpected action: %q", callErr.Action)
	}
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply in chain, got %v", err)
	}
}

func TestInvokeBadResultShape(t *testing.T) {
	conn := startFakeEndpoint(t, func(action string, params json.RawMessage) (any, string) {
		return "not a number", ""
	})

	_, err := New(conn).Version(context.Background())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	if callErr.Action != "version" {
		t.Fatalf("unexpected action: %q", callErr.Action)
	}
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("expected ErrMalformedReply in chain, got %v", err)
	}
}

func TestDefaultClientNotConnected(t *testing.T) {
	Disconnect()

	_, err := Default().DeckNames(context.Background())
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	if callErr.Action != "deckNames" {
		t.Fatalf("unexpected action: %q", callErr.Action)
	}
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected in chain, got %v", err)
	}
}

func TestDefaultClientFollowsConnection(t *testing.T) {
	conn := startFakeEndpoint(t, func(action string, params json.RawMessage) (any, string) {
		switch action {
		case "version":
			return DefaultVersion, ""
		case "deckNames":
			return []string{"Default", "Japanese"}, ""
		}
		return nil, "unexpected action " + action
	})
	t.Cleanup(Disconnect)

	if err := Connect(context.Background(), conn.Host, conn.Port, conn.Version); err != nil {
		t.Fatalf("connect: %v", err)
	}
	names, err := Default().DeckNames(context.Background())
	if err != nil {
		t.Fatalf("deckNames: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("unexpected deck names: %v", names)
	}
}
