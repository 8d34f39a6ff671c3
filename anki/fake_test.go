package anki

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/workingdoge/ankiconnect/internal/testutil/testlog"
)

// fakeHandler answers one decoded action request. A non-empty second return
// becomes the reply's error field.
type fakeHandler func(action string, params json.RawMessage) (any, string)

func startFakeEndpoint(t *testing.T, handler fakeHandler) Connection {
	t.Helper()
	testlog.Start(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Action  string          `json:"action"`
			Version int             `json:"version"`
			Params  json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, svcErr := handler(req.Action, req.Params)
		reply := map[string]any{"result": result, "error": nil}
		if svcErr != "" {
			reply["result"] = nil
			reply["error"] = svcErr
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(ts.Close)
	return connFromURL(t, ts.URL)
}

func connFromURL(t *testing.T, raw string) Connection {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse endpoint url %q: %v", raw, err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse endpoint port %q: %v", u.Port(), err)
	}
	return Connection{Host: u.Hostname(), Port: port, Version: DefaultVersion}
}
