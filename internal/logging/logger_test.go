package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetState() {
	CloseAll()
	logsDir = ""
	workspace = ""
	config = loggingConfig{}
	logLevel = levelInfo
}

func TestUninitializedLoggingIsNoOp(t *testing.T) {
	resetState()

	// Must not panic or create files.
	Synthesis("candidate %d", 1)
	Get(CategoryMeta).Error("nothing to see")
	StartTimer(CategoryEvolution, "noop").Stop()
}

func TestInitializeWithoutConfigStaysSilent(t *testing.T) {
	resetState()
	ws := t.TempDir()

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	Registry("registered something")

	if _, err := os.Stat(filepath.Join(ws, ".eidos", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory created without debug mode")
	}
}

func TestInitializeRequiresWorkspace(t *testing.T) {
	resetState()
	if err := Initialize(""); err == nil {
		t.Error("empty workspace accepted")
	}
}

func TestDebugModeWritesCategoryFiles(t *testing.T) {
	resetState()
	t.Cleanup(resetState)
	ws := t.TempDir()

	cfg := `
logging:
  debug_mode: true
  level: debug
  categories:
    synthesis: true
    evolution: false
`
	if err := os.MkdirAll(filepath.Join(ws, ".eidos"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(ws, ".eidos", "config.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	Synthesis("found program %q", "add(arg0, 1)")
	Evolution("this category is disabled")
	CloseAll()

	data, err := os.ReadFile(filepath.Join(ws, ".eidos", "logs", "synthesis.log"))
	if err != nil {
		t.Fatalf("synthesis log not written: %v", err)
	}
	if !strings.Contains(string(data), `found program "add(arg0, 1)"`) {
		t.Errorf("synthesis log missing entry: %s", data)
	}

	if _, err := os.Stat(filepath.Join(ws, ".eidos", "logs", "evolution.log")); !os.IsNotExist(err) {
		t.Error("disabled category wrote a log file")
	}
}

func TestCategoryToggles(t *testing.T) {
	resetState()
	t.Cleanup(resetState)

	config = loggingConfig{
		DebugMode:  true,
		Categories: map[string]bool{"meta": false},
	}
	if IsCategoryEnabled(CategoryMeta) {
		t.Error("explicitly disabled category reported enabled")
	}
	if !IsCategoryEnabled(CategoryStore) {
		t.Error("unlisted category should default to enabled")
	}

	config.DebugMode = false
	if IsCategoryEnabled(CategoryStore) {
		t.Error("category enabled with debug mode off")
	}
}
