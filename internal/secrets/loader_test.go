package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KINDRED_TEST_KEY", " from-env ")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "file wins", src: Source{File: keyFile, Value: "inline", Env: "KINDRED_TEST_KEY"}, expect: "from-file"},
		{name: "value over env", src: Source{Value: " inline ", Env: "KINDRED_TEST_KEY"}, expect: "inline"},
		{name: "env fallback", src: Source{Env: "KINDRED_TEST_KEY"}, expect: "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KINDRED_EMPTY_KEY", "")

	tests := []struct {
		name     string
		src      Source
		contains string
	}{
		{name: "missing file", src: Source{Name: "gemini api key", File: filepath.Join(dir, "absent")}, contains: "reading gemini api key"},
		{name: "empty file", src: Source{Name: "gemini api key", File: empty, Value: "ignored"}, contains: "is empty"},
		{name: "empty env", src: Source{Env: "KINDRED_EMPTY_KEY"}, contains: "KINDRED_EMPTY_KEY is empty"},
		{name: "nothing set", src: Source{Name: "openai api key"}, contains: "openai api key is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}
