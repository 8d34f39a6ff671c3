package anki

import "context"

type createDeckParams struct {
	Deck string `json:"deck"`
}

type deleteDecksParams struct {
	Decks    []string `json:"decks"`
	CardsToo bool     `json:"cardsToo"`
}

type changeDeckParams struct {
	Cards []int64 `json:"cards"`
	Deck  string  `json:"deck"`
}

// DeckNames returns the names of every deck.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	return invoke[[]string](ctx, c, "deckNames", nil)
}

// DeckNamesAndIDs returns deck names mapped to their collection IDs.
func (c *Client) DeckNamesAndIDs(ctx context.Context) (map[string]int64, error) {
	return invoke[map[string]int64](ctx, c, "deckNamesAndIds", nil)
}

// CreateDeck creates a deck and returns its ID. Creating a deck that already
// exists is reported as an error by the service.
func (c *Client) CreateDeck(ctx context.Context, name string) (int64, error) {
	return invoke[int64](ctx, c, "createDeck", createDeckParams{Deck: name})
}

// DeleteDecks removes the named decks together with their cards.
func (c *Client) DeleteDecks(ctx context.Context, names ...string) error {
	return invokeNoResult(ctx, c, "deleteDecks", deleteDecksParams{
		Decks:    names,
		CardsToo: true,
	})
}

// ChangeDeck moves the given cards into the named deck.
func (c *Client) ChangeDeck(ctx context.Context, deck string, cards []int64) error {
	return invokeNoResult(ctx, c, "changeDeck", changeDeckParams{
		Cards: cards,
		Deck:  deck,
	})
}
