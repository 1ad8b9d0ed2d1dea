package trace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"khata/internal/logger"
)

// Mode selects when a session touches disk.
type Mode string

const (
	// ModeImmediate writes each log as soon as it is recorded.
	ModeImmediate Mode = "IMMEDIATE"
	// ModeBatch accumulates logs in memory and writes once on Flush. Scans
	// cover thousands of messages; per-message writes would dominate latency.
	ModeBatch Mode = "BATCH"
)

// Session accumulates decision traces for one ingestion run. All methods are
// safe for concurrent producers; a mutex serializes appends against the
// session-end flush. Every disk failure is logged and swallowed; tracing
// never alters or aborts classification.
type Session struct {
	mu      sync.Mutex
	mode    Mode
	dir     string
	debug   bool
	pending []*Log
	file    *os.File
	name    string
}

// NewSession opens a trace session. When debug is false the session is a
// no-op sink: logs are accepted and discarded, matching the contract that
// traces persist only under the debug flag.
func NewSession(dir string, mode Mode, debug bool) *Session {
	return &Session{
		mode:  mode,
		dir:   dir,
		debug: debug,
		name:  batchFileName(time.Now()),
	}
}

// FileName returns the session's target file name.
func (s *Session) FileName() string { return s.name }

// Record finalizes the log and hands it to the session. In immediate mode it
// is written now; in batch mode it is held until Flush.
func (s *Session) Record(l *Log) {
	l.Finalize()
	if !s.debug {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeBatch {
		s.pending = append(s.pending, l)
		return
	}
	s.writeLocked(l)
}

// Flush writes all pending logs (batch mode) and closes the session file.
// It returns the written file path, or "" when nothing was persisted.
func (s *Session) Flush() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.pending {
		s.writeLocked(l)
	}
	s.pending = nil

	if s.file == nil {
		return ""
	}
	path := s.file.Name()
	if err := s.file.Close(); err != nil {
		logger.Get().Errorw("failed to close trace file", "error", err, "file", path)
	}
	s.file = nil
	return path
}

// Clear drops all pending logs without writing them.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// Pending returns the number of unwritten logs.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// writeLocked appends one log as a JSON line. Callers hold s.mu.
func (s *Session) writeLocked(l *Log) {
	if s.file == nil {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			logger.Get().Errorw("failed to create trace directory", "error", err, "dir", s.dir)
			return
		}
		f, err := os.OpenFile(filepath.Join(s.dir, s.name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Get().Errorw("failed to open trace file", "error", err, "file", s.name)
			return
		}
		s.file = f
	}

	line, err := json.Marshal(l)
	if err != nil {
		logger.Get().Errorw("failed to marshal trace log", "error", err, "transaction_id", l.TransactionID)
		return
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		logger.Get().Errorw("failed to write trace log", "error", err, "transaction_id", l.TransactionID)
	}
}

// batchFileName builds the session file name: log_batch_<epochMillis>_<8hex>.jsonl.
func batchFileName(t time.Time) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("log_batch_%d_%s.jsonl", t.UnixMilli(), suffix)
}

// ListFiles returns the trace files under dir, oldest first by name (the
// epoch-millis prefix makes lexical order chronological).
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
