package events

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives lifecycle events emitted by the engine, one topic per event
// kind. Sinks are observational only; the engine treats emit failures as
// log-worthy, never as operation failures.
type Sink interface {
	WriteMessage(topic string, msg []byte) error
}

// Discard drops every event. Used when no feed is configured.
type Discard struct{}

func (Discard) WriteMessage(string, []byte) error { return nil }

// ConsoleSink writes events to stdout, prefixed with their topic.
type ConsoleSink struct{}

func (c *ConsoleSink) WriteMessage(topic string, msg []byte) error {
	output := fmt.Sprintf("[%s] %s\n", topic, string(msg))
	if _, err := os.Stdout.Write([]byte(output)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	_ = os.Stdout.Sync()
	return nil
}

// FileSink appends events to one file per topic under a base directory.
type FileSink struct {
	files    map[string]*os.File
	basePath string
}

func NewFileSink(basePath string) *FileSink {
	return &FileSink{
		files:    make(map[string]*os.File),
		basePath: basePath,
	}
}

func (f *FileSink) WriteMessage(topic string, msg []byte) error {
	file, ok := f.files[topic]
	if !ok {
		if err := os.MkdirAll(f.basePath, 0o755); err != nil {
			return fmt.Errorf("failed to create event directory: %w", err)
		}
		filename := filepath.Join(f.basePath, topic+".jsonl")
		var err error
		file, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open file for topic %s: %w", topic, err)
		}
		f.files[topic] = file
	}

	if _, err := file.Write(append(msg, '\n')); err != nil {
		return fmt.Errorf("failed to write message to topic %s: %w", topic, err)
	}
	return nil
}

func (f *FileSink) Close() error {
	var firstErr error
	for topic, file := range f.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close file for topic %s: %w", topic, err)
		}
	}
	f.files = make(map[string]*os.File)
	return firstErr
}

// Fanout forwards every event to each of its sinks, returning the first
// error after all sinks have been attempted.
type Fanout []Sink

func (f Fanout) WriteMessage(topic string, msg []byte) error {
	var firstErr error
	for _, s := range f {
		if err := s.WriteMessage(topic, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
