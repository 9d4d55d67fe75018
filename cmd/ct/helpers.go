package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"

	"github.com/dOtOb9/message/internal/config"
	"github.com/dOtOb9/message/internal/db"
	"github.com/dOtOb9/message/internal/genai"
	"gorm.io/gorm"
)

const defaultConfigPath = "message.yaml"

// loadConfig reads the config file. A missing file at the default
// path falls back to built-in defaults (local sqlite).
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// connectFromConfig loads config and opens the store.
func connectFromConfig(path string) (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

// buildGenerator creates the generation client from config. Returns a
// nil Generator when no credential is configured: in emulator mode
// the pipeline substitutes its deterministic mock, otherwise
// generation is unavailable and invocations fail (logged, no todo).
func buildGenerator(cfg *config.Config, out io.Writer) genai.Generator {
	gen, err := genai.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	if err != nil {
		if errors.Is(err, genai.ErrNoCredential) {
			if cfg.OpenAI.Emulator {
				fmt.Fprintf(out, "No API key configured; emulator mode active.\n")
			} else {
				fmt.Fprintf(out, "Warning: no API key configured; todo generation disabled.\n")
			}
		} else {
			log.Printf("create generation client: %v", err)
		}
		return nil
	}
	return gen
}
