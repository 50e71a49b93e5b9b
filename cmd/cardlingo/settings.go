package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Settings mirrors the translation_settings.json file so the watcher
// can run unattended with a saved configuration. Flags override any
// value loaded from the file.
type Settings struct {
	TargetLanguage string `json:"target_language"`
	SourceLanguage string `json:"source_language"`
	Backend        string `json:"backend"`
	CharactersDir  string `json:"characters_dir"`
	TranslateName  bool   `json:"translate_name"`
	UseStandinName bool   `json:"use_standin_name"`
	TranslateAngle bool   `json:"translate_angle"`
	CacheTTL       int    `json:"cache_ttl"`
	RedisURL       string `json:"redis_url,omitempty"`
}

func defaultSettings() Settings {
	return Settings{
		TargetLanguage: "pt",
		SourceLanguage: "auto",
		Backend:        "google",
		UseStandinName: true,
		CacheTTL:       0,
	}
}

// loadSettings reads a settings file, returning defaults when the file
// does not exist.
func loadSettings(path string) (Settings, error) {
	s := defaultSettings()

	raw, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("parsing settings: %w", err)
	}
	return s, nil
}
