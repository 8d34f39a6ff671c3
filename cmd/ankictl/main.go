package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/workingdoge/ankiconnect/anki"
	"github.com/workingdoge/ankiconnect/internal/logging"
)

type options struct {
	mode    string
	config  string
	host    string
	port    int
	version int
	deck    string
	model   string
	fields  string
	tags    string
	query   string
	asJSON  bool
}

func main() {
	logging.ConfigureRuntime()
	opts := parseFlags()

	cfg, err := loadSettings(opts.config)
	if err != nil {
		fatalf("%v", err)
	}
	applyFlagOverrides(&cfg, opts)

	ctx := context.Background()
	if !anki.TryConnect(ctx, cfg.Host, cfg.Port, cfg.Version) {
		log.Warn().
			Str("host", cfg.Host).
			Int("port", cfg.Port).
			Msg("anki endpoint not reachable; is the application running with the automation add-on?")
	}
	client := anki.Default(anki.WithLogger(log.Logger))

	if err := runMode(ctx, client, cfg, opts); err != nil {
		fatalf("%v", err)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.mode, "mode", "decks", "mode: version | decks | create-deck | delete-deck | add-note | find-notes | tags | models | sync")
	flag.StringVar(&opts.config, "config", "", "path to toml config file")
	flag.StringVar(&opts.host, "host", "", "endpoint host (overrides config)")
	flag.IntVar(&opts.port, "port", 0, "endpoint port (overrides config)")
	flag.IntVar(&opts.version, "version", 0, "protocol version (overrides config)")
	flag.StringVar(&opts.deck, "deck", "", "deck name (create-deck, delete-deck, add-note)")
	flag.StringVar(&opts.model, "model", "", "model name (add-note)")
	flag.StringVar(&opts.fields, "fields", "", "note fields as k=v pairs, comma-separated (add-note)")
	flag.StringVar(&opts.tags, "tags", "", "space-separated tags (add-note)")
	flag.StringVar(&opts.query, "query", "", "search query (find-notes)")
	flag.BoolVar(&opts.asJSON, "json", false, "emit raw JSON output")
	flag.Parse()
	return opts
}

func applyFlagOverrides(cfg *settings, opts options) {
	if strings.TrimSpace(opts.host) != "" {
		cfg.Host = strings.TrimSpace(opts.host)
	}
	if opts.port > 0 {
		cfg.Port = opts.port
	}
	if opts.version > 0 {
		cfg.Version = opts.version
	}
	if strings.TrimSpace(opts.deck) != "" {
		cfg.Deck = strings.TrimSpace(opts.deck)
	}
	if strings.TrimSpace(opts.model) != "" {
		cfg.Model = strings.TrimSpace(opts.model)
	}
}

func runMode(ctx context.Context, client *anki.Client, cfg settings, opts options) error {
	switch opts.mode {
	case "version":
		v, err := client.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil

	case "decks":
		if opts.asJSON {
			decks, err := client.DeckNamesAndIDs(ctx)
			if err != nil {
				return err
			}
			return printJSON(decks)
		}
		names, err := client.DeckNames(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil

	case "create-deck":
		id, err := client.CreateDeck(ctx, cfg.Deck)
		if err != nil {
			return err
		}
		fmt.Printf("created deck %q (id %d)\n", cfg.Deck, id)
		return nil

	case "delete-deck":
		if strings.TrimSpace(opts.deck) == "" {
			return fmt.Errorf("delete-deck requires an explicit -deck")
		}
		if err := client.DeleteDecks(ctx, cfg.Deck); err != nil {
			return err
		}
		fmt.Printf("deleted deck %q\n", cfg.Deck)
		return nil

	case "add-note":
		fields, err := parseFields(opts.fields)
		if err != nil {
			return err
		}
		note := anki.Note{
			Deck:   cfg.Deck,
			Model:  cfg.Model,
			Fields: fields,
		}
		if tags := strings.Fields(opts.tags); len(tags) > 0 {
			note.Tags = tags
		}
		id, err := client.AddNote(ctx, note)
		if err != nil {
			return err
		}
		fmt.Printf("added note %d to deck %q\n", id, cfg.Deck)
		return nil

	case "find-notes":
		query := opts.query
		if strings.TrimSpace(query) == "" {
			query = "deck:" + cfg.Deck
		}
		ids, err := client.FindNotes(ctx, query)
		if err != nil {
			return err
		}
		if opts.asJSON {
			infos, err := client.NotesInfo(ctx, ids)
			if err != nil {
				return err
			}
			return printJSON(infos)
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil

	case "tags":
		tags, err := client.GetTags(ctx)
		if err != nil {
			return err
		}
		if opts.asJSON {
			return printJSON(tags)
		}
		for _, tag := range tags {
			fmt.Println(tag)
		}
		return nil

	case "models":
		if opts.asJSON {
			models, err := client.ModelNamesAndIDs(ctx)
			if err != nil {
				return err
			}
			return printJSON(models)
		}
		names, err := client.ModelNames(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil

	case "sync":
		if err := client.Sync(ctx); err != nil {
			return err
		}
		fmt.Println("sync started")
		return nil

	default:
		return fmt.Errorf("unknown mode %q (supported: version, decks, create-deck, delete-deck, add-note, find-notes, tags, models, sync)", opts.mode)
	}
}

// parseFields turns "Front=dog,Back=犬" into a field map.
func parseFields(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("add-note requires -fields (e.g. -fields 'Front=dog,Back=犬')")
	}
	fields := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed field pair %q", pair)
		}
		fields[name] = value
	}
	return fields, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ankictl: "+format+"\n", args...)
	os.Exit(1)
}
