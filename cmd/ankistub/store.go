package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const protocolVersion = 6

const defaultCSS = ".card { font-family: arial; font-size: 20px; text-align: center; }"

type envelope struct {
	Action  string          `json:"action"`
	Version int             `json:"version"`
	Params  json.RawMessage `json:"params"`
}

type cardTemplate struct {
	Front string `json:"Front"`
	Back  string `json:"Back"`
}

type stubModel struct {
	ID        int64
	Fields    []string
	Templates map[string]cardTemplate
	CSS       string
}

type stubNote struct {
	ID     int64
	Model  string
	Fields map[string]string
	Tags   []string
	Cards  []int64
}

type stubCard struct {
	NoteID int64
	Deck   string
}

// store is one in-memory collection guarded by a single lock; every action
// is a serialized read-modify-write, like the real application's collection.
type store struct {
	mu     sync.Mutex
	decks  map[string]int64
	models map[string]*stubModel
	notes  map[int64]*stubNote
	cards  map[int64]*stubCard
	nextID int64
}

func newStore() *store {
	return &store{
		decks: map[string]int64{"Default": 1},
		models: map[string]*stubModel{
			"Basic": {
				ID:     1,
				Fields: []string{"Front", "Back"},
				Templates: map[string]cardTemplate{
					"Card 1": {Front: "{{Front}}", Back: "{{FrontSide}}<hr id=answer>{{Back}}"},
				},
				CSS: defaultCSS,
			},
		},
		notes:  map[int64]*stubNote{},
		cards:  map[int64]*stubCard{},
		nextID: time.Now().UnixMilli(),
	}
}

func (s *store) handle(c *gin.Context) {
	var req envelope
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"result": nil, "error": "invalid request: " + err.Error()})
		return
	}
	result, err := s.dispatch(req)
	if err != nil {
		// The protocol reports action failures in the envelope, not via
		// HTTP status.
		c.JSON(http.StatusOK, gin.H{"result": nil, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "error": nil})
}

func (s *store) dispatch(req envelope) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Action {
	case "version":
		return protocolVersion, nil
	case "sync":
		return nil, nil
	case "getTags":
		return s.allTags(), nil

	case "deckNames":
		return sortedKeys(s.decks), nil
	case "deckNamesAndIds":
		return s.decks, nil
	case "createDeck":
		var p struct {
			Deck string `json:"deck"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.createDeck(p.Deck)
	case "deleteDecks":
		var p struct {
			Decks    []string `json:"decks"`
			CardsToo bool     `json:"cardsToo"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		s.deleteDecks(p.Decks)
		return nil, nil
	case "changeDeck":
		var p struct {
			Cards []int64 `json:"cards"`
			Deck  string  `json:"deck"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return nil, s.changeDeck(p.Cards, p.Deck)

	case "addNote":
		var p struct {
			Note noteParams `json:"note"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.addNote(p.Note)
	case "addNotes":
		var p struct {
			Notes []noteParams `json:"notes"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		ids := make([]any, len(p.Notes))
		for i, n := range p.Notes {
			id, err := s.addNote(n)
			if err != nil {
				ids[i] = nil
				continue
			}
			ids[i] = id
		}
		return ids, nil
	case "canAddNotes":
		var p struct {
			Notes []noteParams `json:"notes"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		ok := make([]bool, len(p.Notes))
		for i, n := range p.Notes {
			ok[i] = s.validateNote(n) == nil
		}
		return ok, nil
	case "updateNoteFields":
		var p struct {
			Note struct {
				ID     int64             `json:"id"`
				Fields map[string]string `json:"fields"`
			} `json:"note"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		note, ok := s.notes[p.Note.ID]
		if !ok {
			return nil, fmt.Errorf("note not found: %d", p.Note.ID)
		}
		for k, v := range p.Note.Fields {
			note.Fields[k] = v
		}
		return nil, nil
	case "findNotes":
		var p struct {
			Query string `json:"query"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.findNotes(p.Query), nil
	case "notesInfo":
		var p struct {
			Notes []int64 `json:"notes"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.notesInfo(p.Notes), nil
	case "deleteNotes":
		var p struct {
			Notes []int64 `json:"notes"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		s.deleteNotes(p.Notes)
		return nil, nil
	case "addTags", "removeTags":
		var p struct {
			Notes []int64 `json:"notes"`
			Tags  string  `json:"tags"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		s.retag(p.Notes, strings.Fields(p.Tags), req.Action == "addTags")
		return nil, nil
	case "cardsToNotes":
		var p struct {
			Cards []int64 `json:"cards"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.cardsToNotes(p.Cards), nil

	case "modelNames":
		return sortedModelNames(s.models), nil
	case "modelNamesAndIds":
		out := make(map[string]int64, len(s.models))
		for name, m := range s.models {
			out[name] = m.ID
		}
		return out, nil
	case "modelFieldNames":
		m, err := s.modelByParams(req)
		if err != nil {
			return nil, err
		}
		return m.Fields, nil
	case "modelTemplates":
		m, err := s.modelByParams(req)
		if err != nil {
			return nil, err
		}
		return m.Templates, nil
	case "modelStyling":
		m, err := s.modelByParams(req)
		if err != nil {
			return nil, err
		}
		return map[string]string{"css": m.CSS}, nil
	case "updateModelTemplates":
		var p struct {
			Model struct {
				Name      string                  `json:"name"`
				Templates map[string]cardTemplate `json:"templates"`
			} `json:"model"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		m, ok := s.models[p.Model.Name]
		if !ok {
			return nil, fmt.Errorf("model was not found: %s", p.Model.Name)
		}
		for name, tmpl := range p.Model.Templates {
			if _, ok := m.Templates[name]; !ok {
				return nil, fmt.Errorf("card template was not found: %s", name)
			}
			m.Templates[name] = tmpl
		}
		return nil, nil
	case "updateModelStyling":
		var p struct {
			Model struct {
				Name string `json:"name"`
				CSS  string `json:"css"`
			} `json:"model"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		m, ok := s.models[p.Model.Name]
		if !ok {
			return nil, fmt.Errorf("model was not found: %s", p.Model.Name)
		}
		m.CSS = p.Model.CSS
		return nil, nil
	case "createModel":
		var p struct {
			Name      string   `json:"modelName"`
			Fields    []string `json:"inOrderFields"`
			CSS       string   `json:"css"`
			Templates []struct {
				Name  string `json:"Name"`
				Front string `json:"Front"`
				Back  string `json:"Back"`
			} `json:"cardTemplates"`
		}
		if err := decodeParams(req, &p); err != nil {
			return nil, err
		}
		return s.createModel(p.Name, p.Fields, p.CSS, func() map[string]cardTemplate {
			templates := make(map[string]cardTemplate, len(p.Templates))
			for _, t := range p.Templates {
				templates[t.Name] = cardTemplate{Front: t.Front, Back: t.Back}
			}
			return templates
		}())

	default:
		return nil, fmt.Errorf("unsupported action: %s", req.Action)
	}
}

type noteParams struct {
	Deck    string            `json:"deckName"`
	Model   string            `json:"modelName"`
	Fields  map[string]string `json:"fields"`
	Tags    []string          `json:"tags"`
	Options *struct {
		AllowDuplicate bool `json:"allowDuplicate"`
	} `json:"options"`
}

func decodeParams(req envelope, out any) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("missing params for action %s", req.Action)
	}
	if err := json.Unmarshal(req.Params, out); err != nil {
		return fmt.Errorf("invalid params for action %s: %v", req.Action, err)
	}
	return nil
}

func (s *store) createDeck(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("deck name required")
	}
	if _, ok := s.decks[name]; ok {
		return 0, fmt.Errorf("deck already exists")
	}
	id := s.allocID()
	s.decks[name] = id
	return id, nil
}

func (s *store) deleteDecks(names []string) {
	for _, name := range names {
		delete(s.decks, name)
	}
	for cardID, card := range s.cards {
		if _, ok := s.decks[card.Deck]; ok {
			continue
		}
		delete(s.cards, cardID)
	}
	// Notes with no surviving cards disappear with their decks.
	remaining := make(map[int64]bool, len(s.cards))
	for _, card := range s.cards {
		remaining[card.NoteID] = true
	}
	for noteID := range s.notes {
		if !remaining[noteID] {
			delete(s.notes, noteID)
		}
	}
}

func (s *store) changeDeck(cardIDs []int64, deck string) error {
	deck = strings.TrimSpace(deck)
	if deck == "" {
		return fmt.Errorf("deck name required")
	}
	if _, ok := s.decks[deck]; !ok {
		s.decks[deck] = s.allocID()
	}
	for _, id := range cardIDs {
		card, ok := s.cards[id]
		if !ok {
			return fmt.Errorf("card not found: %d", id)
		}
		card.Deck = deck
	}
	return nil
}

func (s *store) validateNote(p noteParams) error {
	if _, ok := s.decks[p.Deck]; !ok {
		return fmt.Errorf("deck was not found: %s", p.Deck)
	}
	model, ok := s.models[p.Model]
	if !ok {
		return fmt.Errorf("model was not found: %s", p.Model)
	}
	if len(model.Fields) == 0 {
		return fmt.Errorf("model has no fields: %s", p.Model)
	}
	first := model.Fields[0]
	if strings.TrimSpace(p.Fields[first]) == "" {
		return fmt.Errorf("cannot create note because it is empty")
	}
	if p.Options != nil && p.Options.AllowDuplicate {
		return nil
	}
	for _, note := range s.notes {
		if note.Model == p.Model && note.Fields[first] == p.Fields[first] {
			return fmt.Errorf("cannot create note because it is a duplicate")
		}
	}
	return nil
}

func (s *store) addNote(p noteParams) (int64, error) {
	if err := s.validateNote(p); err != nil {
		return 0, err
	}
	model := s.models[p.Model]

	note := &stubNote{
		ID:     s.allocID(),
		Model:  p.Model,
		Fields: make(map[string]string, len(model.Fields)),
		Tags:   append([]string(nil), p.Tags...),
	}
	for _, field := range model.Fields {
		note.Fields[field] = p.Fields[field]
	}
	for range model.Templates {
		cardID := s.allocID()
		s.cards[cardID] = &stubCard{NoteID: note.ID, Deck: p.Deck}
		note.Cards = append(note.Cards, cardID)
	}
	s.notes[note.ID] = note
	return note.ID, nil
}

// findNotes supports deck:/tag: prefixes and bare terms matched as field
// substrings; terms are ANDed. An empty query matches everything.
func (s *store) findNotes(query string) []int64 {
	var ids []int64
	for _, note := range s.notes {
		if s.noteMatches(note, query) {
			ids = append(ids, note.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if ids == nil {
		ids = []int64{}
	}
	return ids
}

func (s *store) noteMatches(note *stubNote, query string) bool {
	for _, term := range strings.Fields(query) {
		switch {
		case strings.HasPrefix(term, "deck:"):
			if !s.noteInDeck(note, strings.TrimPrefix(term, "deck:")) {
				return false
			}
		case strings.HasPrefix(term, "tag:"):
			if !contains(note.Tags, strings.TrimPrefix(term, "tag:")) {
				return false
			}
		default:
			matched := false
			for _, value := range note.Fields {
				if strings.Contains(value, term) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

func (s *store) noteInDeck(note *stubNote, deck string) bool {
	for _, cardID := range note.Cards {
		if card, ok := s.cards[cardID]; ok && card.Deck == deck {
			return true
		}
	}
	return false
}

func (s *store) notesInfo(ids []int64) []map[string]any {
	infos := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		note, ok := s.notes[id]
		if !ok {
			continue
		}
		model := s.models[note.Model]
		fields := make(map[string]any, len(note.Fields))
		for i, name := range model.Fields {
			fields[name] = map[string]any{"value": note.Fields[name], "order": i}
		}
		infos = append(infos, map[string]any{
			"noteId":    note.ID,
			"modelName": note.Model,
			"tags":      note.Tags,
			"fields":    fields,
			"cards":     note.Cards,
		})
	}
	return infos
}

func (s *store) deleteNotes(ids []int64) {
	for _, id := range ids {
		note, ok := s.notes[id]
		if !ok {
			continue
		}
		for _, cardID := range note.Cards {
			delete(s.cards, cardID)
		}
		delete(s.notes, id)
	}
}

func (s *store) retag(ids []int64, tags []string, add bool) {
	for _, id := range ids {
		note, ok := s.notes[id]
		if !ok {
			continue
		}
		for _, tag := range tags {
			if add {
				if !contains(note.Tags, tag) {
					note.Tags = append(note.Tags, tag)
				}
			} else {
				note.Tags = remove(note.Tags, tag)
			}
		}
	}
}

func (s *store) cardsToNotes(cardIDs []int64) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, id := range cardIDs {
		card, ok := s.cards[id]
		if !ok || seen[card.NoteID] {
			continue
		}
		seen[card.NoteID] = true
		ids = append(ids, card.NoteID)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids
}

func (s *store) allTags() []string {
	seen := make(map[string]bool)
	var tags []string
	for _, note := range s.notes {
		for _, tag := range note.Tags {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)
	if tags == nil {
		tags = []string{}
	}
	return tags
}

func (s *store) createModel(name string, fields []string, css string, templates map[string]cardTemplate) (any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("model name required")
	}
	if _, ok := s.models[name]; ok {
		return nil, fmt.Errorf("model already exists: %s", name)
	}
	if len(fields) == 0 || len(templates) == 0 {
		return nil, fmt.Errorf("model requires fields and card templates")
	}
	if css == "" {
		css = defaultCSS
	}
	m := &stubModel{
		ID:        s.allocID(),
		Fields:    append([]string(nil), fields...),
		Templates: templates,
		CSS:       css,
	}
	s.models[name] = m
	return map[string]any{"id": m.ID, "name": name}, nil
}

func (s *store) modelByParams(req envelope) (*stubModel, error) {
	var p struct {
		Model string `json:"modelName"`
	}
	if err := decodeParams(req, &p); err != nil {
		return nil, err
	}
	m, ok := s.models[p.Model]
	if !ok {
		return nil, fmt.Errorf("model was not found: %s", p.Model)
	}
	return m, nil
}

func (s *store) allocID() int64 {
	s.nextID++
	return s.nextID
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedModelNames(m map[string]*stubModel) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func remove(list []string, drop string) []string {
	out := list[:0]
	for _, v := range list {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}
