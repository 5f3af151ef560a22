package events

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSinkAppendsPerTopic(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir)
	defer s.Close()

	if err := s.WriteMessage("order_created", []byte(`{"order_id":"o1"}`)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if err := s.WriteMessage("order_created", []byte(`{"order_id":"o2"}`)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if err := s.WriteMessage("order_paid", []byte(`{"order_id":"o1"}`)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "order_created.jsonl"))
	if err != nil {
		t.Fatalf("reading topic file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Errorf("order_created lines = %d, want 2", len(lines))
	}

	if _, err := os.Stat(filepath.Join(dir, "order_paid.jsonl")); err != nil {
		t.Errorf("order_paid file missing: %v", err)
	}
}

type failSink struct{ err error }

func (f failSink) WriteMessage(string, []byte) error { return f.err }

type countSink struct{ n int }

func (c *countSink) WriteMessage(string, []byte) error {
	c.n++
	return nil
}

func TestFanoutReachesAllSinks(t *testing.T) {
	boom := errors.New("boom")
	a := &countSink{}
	b := &countSink{}
	f := Fanout{a, failSink{boom}, b}

	if err := f.WriteMessage("t", []byte("x")); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if a.n != 1 || b.n != 1 {
		t.Errorf("sinks after failure: %d/%d, want 1/1", a.n, b.n)
	}
}

func TestDiscard(t *testing.T) {
	if err := (Discard{}).WriteMessage("t", []byte("x")); err != nil {
		t.Errorf("Discard.WriteMessage = %v", err)
	}
}
