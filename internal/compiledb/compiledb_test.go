package compiledb

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "compile_commands.json"))
	if err == nil {
		t.Fatal("Load() on missing file: expected error, got nil")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "compile_commands.json", "{not json")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() on malformed JSON: expected error, got nil")
	}
}

func TestLoadParsesRecords(t *testing.T) {
	content := `[
  {
    "directory": "/build",
    "arguments": ["cc", "-c", "a.c"],
    "file": "a.c",
    "output": "a.o"
  },
  {
    "directory": "/build",
    "command": "cc -c b.c",
    "file": "b.c"
  }
]`
	path := writeFile(t, t.TempDir(), "compile_commands.json", content)

	db, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(db) != 2 {
		t.Fatalf("len(db) = %d, want 2", len(db))
	}

	first := Command{
		Directory: "/build",
		Arguments: []string{"cc", "-c", "a.c"},
		File:      "a.c",
		Output:    "a.o",
	}
	if !reflect.DeepEqual(db[0], first) {
		t.Errorf("db[0] = %+v, want %+v", db[0], first)
	}
	if db[1].Command != "cc -c b.c" {
		t.Errorf("db[1].Command = %q, want %q", db[1].Command, "cc -c b.c")
	}
	if db[1].Arguments != nil {
		t.Errorf("db[1].Arguments = %v, want nil", db[1].Arguments)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	db := Database{
		{Directory: "/build", Arguments: []string{"cc", "-c", "a.c"}, File: "a.c"},
		{Directory: "/build", Arguments: []string{"cc", "-c", "b.c"}, File: "b.c", Output: "b.o"},
	}
	path := filepath.Join(t.TempDir(), "compile_commands.json")

	if err := db.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save: %v", err)
	}
	if !reflect.DeepEqual(got, db) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, db)
	}
}

func TestMarshalIndent(t *testing.T) {
	db := Database{
		{Directory: "/build", Arguments: []string{"cc", "-c", "a.c"}, File: "a.c"},
	}
	data, err := db.MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent() error: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "\n  {") {
		t.Errorf("output not indented with two spaces:\n%s", out)
	}
	if strings.Contains(out, `"command"`) {
		t.Errorf("empty command field not omitted:\n%s", out)
	}
}

func TestMarshalIndentNilDatabase(t *testing.T) {
	var db Database
	data, err := db.MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent() error: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("nil database marshals to %q, want %q", got, "[]")
	}
}
