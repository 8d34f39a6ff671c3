package anki

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// httpTransport performs exactly one POST round trip per send. No retries:
// every failure surfaces immediately to the dispatcher.
type httpTransport struct {
	client *http.Client
}

func newHTTPTransport(client *http.Client) *httpTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpTransport{client: client}
}

func (t *httpTransport) send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Kind: TransportUnreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: TransportUnreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &TransportError{Kind: TransportHTTPStatus, Status: resp.StatusCode}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: TransportMalformed, Err: err}
	}
	return payload, nil
}
