// Package compiledb reads, filters and writes clang compilation
// databases (compile_commands.json).
package compiledb

import (
	"encoding/json"
	"fmt"
	"os"
)

// Command is a single compile-command record. Every key of the
// compilation-database format passes through unchanged; filtering only
// rewrites Arguments.
type Command struct {
	Directory string   `json:"directory,omitempty"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	File      string   `json:"file,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// Database is an ordered list of compile-command records.
type Database []Command

// Load reads a compilation database from path. A missing or unreadable
// file is a hard error.
func Load(path string) (Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compile database %s: %w", path, err)
	}

	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("failed to parse compile database %s: %w", path, err)
	}
	return db, nil
}

// MarshalIndent renders the database as a two-space indented JSON array,
// the layout the rest of the build tooling expects.
func (db Database) MarshalIndent() ([]byte, error) {
	if db == nil {
		db = Database{}
	}
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode compile database: %w", err)
	}
	return data, nil
}

// Save writes the database to path, replacing any existing file.
func (db Database) Save(path string) error {
	data, err := db.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write compile database %s: %w", path, err)
	}
	return nil
}
