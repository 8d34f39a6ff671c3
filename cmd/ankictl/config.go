package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/workingdoge/ankiconnect/anki"
)

// settings is the effective CLI configuration: built-in defaults, overlaid
// by the toml file, overlaid by flags.
type settings struct {
	Host    string
	Port    int
	Version int
	Deck    string
	Model   string
}

func defaultSettings() settings {
	return settings{
		Host:    anki.DefaultHost,
		Port:    anki.DefaultPort,
		Version: anki.DefaultVersion,
		Deck:    "Default",
		Model:   "Basic",
	}
}

// ankictl config.toml key mapping.
type fileConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Version int    `toml:"version"`
	Deck    string `toml:"deck"`
	Model   string `toml:"model"`
}

func loadSettings(path string) (settings, error) {
	cfg := defaultSettings()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return settings{}, fmt.Errorf("load ankictl config: %w", err)
	}
	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		if raw.Port <= 0 || raw.Port > 65535 {
			return settings{}, fmt.Errorf("load ankictl config: invalid port %d", raw.Port)
		}
		cfg.Port = raw.Port
	}
	if meta.IsDefined("version") {
		if raw.Version <= 0 {
			return settings{}, fmt.Errorf("load ankictl config: invalid protocol version %d", raw.Version)
		}
		cfg.Version = raw.Version
	}
	if meta.IsDefined("deck") {
		cfg.Deck = strings.TrimSpace(raw.Deck)
	}
	if meta.IsDefined("model") {
		cfg.Model = strings.TrimSpace(raw.Model)
	}
	return cfg, nil
}
