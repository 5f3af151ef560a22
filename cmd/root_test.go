package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/posfoundry/tablepos/internal/events"
	"github.com/posfoundry/tablepos/internal/models"
)

func TestBuildSinkDefaultsToDiscard(t *testing.T) {
	sink, closeAll, err := buildSink(&models.Config{})
	if err != nil {
		t.Fatalf("buildSink: %v", err)
	}
	defer closeAll()
	if _, ok := sink.(events.Discard); !ok {
		t.Errorf("sink = %T, want events.Discard", sink)
	}
}

func TestBuildSinkConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	sink, closeAll, err := buildSink(&models.Config{
		ConsoleEvents: true,
		EventDir:      dir,
	})
	if err != nil {
		t.Fatalf("buildSink: %v", err)
	}
	defer closeAll()

	fan, ok := sink.(events.Fanout)
	if !ok {
		t.Fatalf("sink = %T, want events.Fanout", sink)
	}
	if len(fan) != 2 {
		t.Fatalf("fanout size = %d, want 2 (console + file)", len(fan))
	}

	if err := sink.WriteMessage("order_created", []byte(`{"order_id":"o1"}`)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "order_created.jsonl")); err != nil {
		t.Errorf("file sink did not write its topic file: %v", err)
	}
}
