package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunScriptFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.cf")
	if err := os.WriteFile(path, []byte("int x = 1 + 2;"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	runEvalExpr = ""
	if err := runScript(nil, []string{path}); err != nil {
		t.Fatalf("runScript error: %v", err)
	}
}

func TestRunScriptInlineEval(t *testing.T) {
	runEvalExpr = "int x = 1;"
	defer func() { runEvalExpr = "" }()
	if err := runScript(nil, nil); err != nil {
		t.Fatalf("runScript error: %v", err)
	}
}

func TestRunScriptNoInputReturnsError(t *testing.T) {
	runEvalExpr = ""
	if err := runScript(nil, nil); err == nil {
		t.Fatal("expected an error when neither a file nor -e is given")
	}
}

func TestRunScriptReportsDiagnostic(t *testing.T) {
	runEvalExpr = "int x = 1 / 0;"
	defer func() { runEvalExpr = "" }()
	err := runScript(nil, nil)
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty diagnostic")
	}
}
