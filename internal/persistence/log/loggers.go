package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// JSONLZstdWriter appends JSON lines to zstd files rotated every UTC hour.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	lines   int
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Lines is the number of records written since the writer was created.
func (w *JSONLZstdWriter) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

func (w *JSONLZstdWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.lines++
	return w.w.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	p := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
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
	w.w = bufio.NewWriterSize(enc, 64*1024)
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
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// ReadJSONL decodes every line of a .jsonl.zst file into fn, in order.
// Concatenated zstd frames from appended sessions are read as one stream.
func ReadJSONL(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(sc.Bytes()); err != nil {
			return err
		}
	}
	return sc.Err()
}

type DecisionEntry struct {
	Time           time.Time `json:"time"`
	RequestID      string    `json:"request_id,omitempty"`
	Seed           int64     `json:"seed"`
	Chunk          [2]int    `json:"chunk"`
	Biome          string    `json:"biome"`
	PlacementChunk bool      `json:"placement_chunk"`
	Frequency      float64   `json:"frequency"`
	Roll           float64   `json:"roll"`
	Gated          bool      `json:"gated"`
	StructureID    string    `json:"structure_id,omitempty"`
}

type LocateEntry struct {
	Time           time.Time `json:"time"`
	RequestID      string    `json:"request_id,omitempty"`
	Seed           int64     `json:"seed"`
	Target         string    `json:"target"`
	Start          [3]int    `json:"start"`
	Found          bool      `json:"found"`
	Chunk          [2]int    `json:"chunk"`
	Pos            [3]int    `json:"pos"`
	Biome          string    `json:"biome,omitempty"`
	ChunksSearched int       `json:"chunks_searched"`
	Radius         int       `json:"radius"`
	Millis         int64     `json:"ms"`
}

// DecisionLogger writes one JSONL entry per chunk decision (compressed).
type DecisionLogger struct{ w *JSONLZstdWriter }

func NewDecisionLogger(dataDir string) *DecisionLogger {
	return &DecisionLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "decisions"), "decisions")}
}

func (l *DecisionLogger) WriteDecision(v DecisionEntry) error { return l.w.Write(v) }
func (l *DecisionLogger) Close() error                        { return l.w.Close() }

// LocateLogger writes one JSONL entry per locate query (compressed).
type LocateLogger struct{ w *JSONLZstdWriter }

func NewLocateLogger(dataDir string) *LocateLogger {
	return &LocateLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "locates"), "locates")}
}

func (l *LocateLogger) WriteLocate(v LocateEntry) error { return l.w.Write(v) }
func (l *LocateLogger) Close() error                    { return l.w.Close() }
