// Package log writes the session's durable JSONL streams: every action the
// autoplayer sends, every ack it gets back, and the raw snapshots, all
// zstd-compressed and rotated hourly. The replay tool feeds the snapshot
// stream back through the engine.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"tycoon.gg/internal/protocol"
)

type JSONLZstdWriter struct {
	baseDir string
	prefix  string

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := time.Now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	dir := filepath.Dir(w.pathForHour(hour))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// ActionEntry records one sent action and, once the server answers, its ack.
type ActionEntry struct {
	At       string           `json:"at"`
	LobbyID  string           `json:"lobby_id"`
	ActionID string           `json:"action_id"`
	Action   *protocol.Action `json:"action"`
	OK       *bool            `json:"ok,omitempty"`
	Code     string           `json:"code,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

// ActionLogger writes action/ack JSONL entries (compressed).
type ActionLogger struct{ w *JSONLZstdWriter }

func NewActionLogger(dataDir string) *ActionLogger {
	return &ActionLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "actions"), "actions")}
}

func (l *ActionLogger) WriteAction(v ActionEntry) error { return l.w.Write(v) }
func (l *ActionLogger) Close() error                    { return l.w.Close() }

// SnapshotLogger writes every STATE message (compressed). One line per
// snapshot version in arrival order.
type SnapshotLogger struct{ w *JSONLZstdWriter }

func NewSnapshotLogger(dataDir string) *SnapshotLogger {
	return &SnapshotLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "snapshots"), "snapshots")}
}

func (l *SnapshotLogger) WriteSnapshot(v *protocol.StateMsg) error { return l.w.Write(v) }
func (l *SnapshotLogger) Close() error                             { return l.w.Close() }

// SnapshotReader streams StateMsg lines back out of one or more rotated
// snapshot files, in the order given.
type SnapshotReader struct {
	paths []string
}

func NewSnapshotReader(paths []string) *SnapshotReader {
	return &SnapshotReader{paths: paths}
}

// Each calls fn for every decoded snapshot until the files are exhausted or
// fn returns io.EOF to stop early.
func (r *SnapshotReader) Each(fn func(*protocol.StateMsg) error) error {
	for _, path := range r.paths {
		stop, err := r.eachFile(path, fn)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if stop {
			return nil
		}
	}
	return nil
}

func (r *SnapshotReader) eachFile(path string, fn func(*protocol.StateMsg) error) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return false, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 128*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var msg protocol.StateMsg
		if err := json.Unmarshal(line, &msg); err != nil {
			return false, err
		}
		if err := fn(&msg); err != nil {
			if err == io.EOF {
				return true, nil
			}
			return false, err
		}
	}
	return false, sc.Err()
}
