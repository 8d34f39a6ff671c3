package anki

import "context"

// Note is the payload for adding one note: which deck and model it belongs
// to, its field values, and optional tags.
type Note struct {
	Deck    string            `json:"deckName"`
	Model   string            `json:"modelName"`
	Fields  map[string]string `json:"fields"`
	Tags    []string          `json:"tags,omitempty"`
	Options *NoteOptions      `json:"options,omitempty"`
}

// NoteOptions tweaks note insertion behavior.
type NoteOptions struct {
	AllowDuplicate bool `json:"allowDuplicate"`
}

// NoteInfo is the service's view of one existing note.
type NoteInfo struct {
	NoteID int64                `json:"noteId"`
	Model  string               `json:"modelName"`
	Tags   []string             `json:"tags"`
	Fields map[string]NoteField `json:"fields"`
	Cards  []int64              `json:"cards"`
}

// NoteField is one field value with its display order within the model.
type NoteField struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

type addNoteParams struct {
	Note Note `json:"note"`
}

type addNotesParams struct {
	Notes []Note `json:"notes"`
}

type updateNoteFieldsParams struct {
	Note noteUpdate `json:"note"`
}

type noteUpdate struct {
	ID     int64             `json:"id"`
	Fields map[string]string `json:"fields"`
}

type findNotesParams struct {
	Query string `json:"query"`
}

type noteIDsParams struct {
	Notes []int64 `json:"notes"`
}

type noteTagsParams struct {
	Notes []int64 `json:"notes"`
	Tags  string  `json:"tags"`
}

type cardsToNotesParams struct {
	Cards []int64 `json:"cards"`
}

// AddNote creates one note and returns its ID.
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	return invoke[int64](ctx, c, "addNote", addNoteParams{Note: note})
}

// AddNotes creates notes in bulk. The returned slice is positional; entries
// the service rejected (e.g. duplicates) come back as zero.
func (c *Client) AddNotes(ctx context.Context, notes []Note) ([]int64, error) {
	return invoke[[]int64](ctx, c, "addNotes", addNotesParams{Notes: notes})
}

// CanAddNotes reports, positionally, whether each note would be accepted.
func (c *Client) CanAddNotes(ctx context.Context, notes []Note) ([]bool, error) {
	return invoke[[]bool](ctx, c, "canAddNotes", addNotesParams{Notes: notes})
}

// UpdateNoteFields replaces field values on an existing note.
func (c *Client) UpdateNoteFields(ctx context.Context, id int64, fields map[string]string) error {
	return invokeNoResult(ctx, c, "updateNoteFields", updateNoteFieldsParams{
		Note: noteUpdate{ID: id, Fields: fields},
	})
}

// FindNotes returns note IDs matching a search query in the application's
// own query syntax (e.g. "deck:Default tag:verb").
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	return invoke[[]int64](ctx, c, "findNotes", findNotesParams{Query: query})
}

// NotesInfo fetches full information for the given note IDs.
func (c *Client) NotesInfo(ctx context.Context, ids []int64) ([]NoteInfo, error) {
	return invoke[[]NoteInfo](ctx, c, "notesInfo", noteIDsParams{Notes: ids})
}

// DeleteNotes removes the given notes and all cards generated from them.
func (c *Client) DeleteNotes(ctx context.Context, ids []int64) error {
	return invokeNoResult(ctx, c, "deleteNotes", noteIDsParams{Notes: ids})
}

// AddTags adds space-separated tags to the given notes.
func (c *Client) AddTags(ctx context.Context, ids []int64, tags string) error {
	return invokeNoResult(ctx, c, "addTags", noteTagsParams{Notes: ids, Tags: tags})
}

// RemoveTags removes space-separated tags from the given notes.
func (c *Client) RemoveTags(ctx context.Context, ids []int64, tags string) error {
	return invokeNoResult(ctx, c, "removeTags", noteTagsParams{Notes: ids, Tags: tags})
}

// CardsToNotes maps card IDs to the note IDs they were generated from,
// without duplicates.
func (c *Client) CardsToNotes(ctx context.Context, cards []int64) ([]int64, error) {
	return invoke[[]int64](ctx, c, "cardsToNotes", cardsToNotesParams{Cards: cards})
}
