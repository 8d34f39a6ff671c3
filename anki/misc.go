package anki

import "context"

// Version returns the protocol version the endpoint speaks.
func (c *Client) Version(ctx context.Context) (int, error) {
	return invoke[int](ctx, c, "version", nil)
}

// Sync triggers a collection sync with the hosted sync service.
func (c *Client) Sync(ctx context.Context) error {
	return invokeNoResult(ctx, c, "sync", nil)
}

// GetTags returns every tag present in the collection.
func (c *Client) GetTags(ctx context.Context) ([]string, error) {
	return invoke[[]string](ctx, c, "getTags", nil)
}
