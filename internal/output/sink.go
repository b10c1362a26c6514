package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sink receives encoded files.
type Sink interface {
	Deliver(ctx context.Context, filename string, data []byte) error
}

// FileSink writes files into Dir, replacing any file of the same name.
type FileSink struct {
	Dir string
}

// Deliver implements Sink. The file is written next to its final name and
// renamed into place, so readers never see a half-written export.
func (s FileSink) Deliver(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filename+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}

	target := filepath.Join(dir, filename)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filename, err)
	}
	log.Debug().Str("path", target).Int("bytes", len(data)).Msg("File written")
	return nil
}

// Path returns where Deliver puts filename.
func (s FileSink) Path(filename string) string {
	if s.Dir == "" {
		return filename
	}
	return filepath.Join(s.Dir, filename)
}

// WriterSink streams every file to W, one after another.
type WriterSink struct {
	W  io.Writer
	mu sync.Mutex
}

// Deliver implements Sink.
func (s *WriterSink) Deliver(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.W.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}
