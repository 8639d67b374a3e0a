package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunCheckOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cf")
	if err := os.WriteFile(path, []byte("int x = 1;"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	checkDumpNamespaces = false
	if err := runCheck(nil, []string{path}); err != nil {
		t.Fatalf("runCheck error: %v", err)
	}
}

func TestRunCheckDumpNamespaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cf")
	if err := os.WriteFile(path, []byte("namespace widgets { int count = 1; }"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	checkDumpNamespaces = true
	defer func() { checkDumpNamespaces = false }()
	if err := runCheck(nil, []string{path}); err != nil {
		t.Fatalf("runCheck error: %v", err)
	}
}

func TestRunCheckReportsFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cf")
	if err := os.WriteFile(path, []byte("int x = ;"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	checkDumpNamespaces = false
	if err := runCheck(nil, []string{path}); err == nil {
		t.Fatal("expected an error for malformed source")
	}
}
