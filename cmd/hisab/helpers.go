package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/hisabkitab/hisab/internal/assistant"
	"github.com/hisabkitab/hisab/internal/llm"
	"github.com/hisabkitab/hisab/internal/storage"
)

// openStorage opens the configured sqlite database, creating its directory
// and applying pending migrations.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "hisab", "hisab.db")
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// chatClient builds the optional LLM client. A missing API key is not an
// error: the assistant answers deterministically without one.
func chatClient() (llm.Client, error) {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		return nil, nil
	}
	return llm.NewClient(llm.Config{
		Provider: viper.GetString("llm.provider"),
		APIKey:   apiKey,
		Model:    viper.GetString("llm.model"),
		Timeout:  viper.GetDuration("llm.timeout"),
	})
}

func newAssistant(ctx context.Context) (*assistant.Assistant, *storage.SQLiteStorage, error) {
	store, err := openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	chat, err := chatClient()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return assistant.New(store, assistant.Options{Chat: chat}), store, nil
}
