// Package snapshot stores placement surveys as zstd-compressed files: one
// JSON header line followed by a gob body.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"structplace.ai/internal/sim/encoding"
	"structplace.ai/internal/sim/engine"
	"structplace.ai/internal/sim/placement"
)

const Version = 1

type Header struct {
	Version      int       `json:"version"`
	StructureSet string    `json:"structure_set"`
	ConfigDigest string    `json:"config_digest"`
	Seed         int64     `json:"seed"`
	CreatedAt    time.Time `json:"created_at"`
}

type SurveyV1 struct {
	Header Header `json:"header"`

	MinX   int `json:"min_x"`
	MinZ   int `json:"min_z"`
	Width  int `json:"width"`
	Height int `json:"height"`

	Structures []string `json:"structures"`
	Cells      string   `json:"cells"` // run-length packed, see encoding.EncodeRuns
	Biomes     []string `json:"biomes"`
	BiomeCells string   `json:"biome_cells"`
}

// FromSurvey packs s for writing.
func FromSurvey(h Header, s engine.Survey) SurveyV1 {
	h.Version = Version
	h.Seed = s.Seed
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	return SurveyV1{
		Header:     h,
		MinX:       s.Min.X,
		MinZ:       s.Min.Z,
		Width:      s.Width(),
		Height:     s.Height(),
		Structures: s.Structures,
		Cells:      encoding.EncodeRuns(s.Cells, s.Width()),
		Biomes:     s.Biomes,
		BiomeCells: encoding.EncodeRuns(s.BiomeCells, s.Width()),
	}
}

// Survey unpacks the stored grid.
func (v SurveyV1) Survey() (engine.Survey, error) {
	if v.Width <= 0 || v.Height <= 0 {
		return engine.Survey{}, fmt.Errorf("bad survey size %dx%d", v.Width, v.Height)
	}
	n := v.Width * v.Height
	cells, err := encoding.DecodeRuns(v.Cells, n)
	if err != nil {
		return engine.Survey{}, fmt.Errorf("cells: %w", err)
	}
	for _, c := range cells {
		if c >= engine.CellStructure && int(c-engine.CellStructure) >= len(v.Structures) {
			return engine.Survey{}, fmt.Errorf("cell value %d outside structure palette", c)
		}
	}
	biomes, err := encoding.DecodeRuns(v.BiomeCells, n)
	if err != nil {
		return engine.Survey{}, fmt.Errorf("biome cells: %w", err)
	}
	return engine.Survey{
		Seed:       v.Header.Seed,
		Min:        placement.ChunkPos{X: v.MinX, Z: v.MinZ},
		Max:        placement.ChunkPos{X: v.MinX + v.Width - 1, Z: v.MinZ + v.Height - 1},
		Structures: v.Structures,
		Cells:      cells,
		Biomes:     v.Biomes,
		BiomeCells: biomes,
	}, nil
}

func WriteSurvey(path string, snap SurveyV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	br, done, err := open(path)
	if err != nil {
		return h, err
	}
	defer done()
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	return h, nil
}

func ReadSurvey(path string) (SurveyV1, error) {
	var snap SurveyV1
	br, done, err := open(path)
	if err != nil {
		return snap, err
	}
	defer done()

	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported survey version %d", snap.Header.Version)
	}
	return snap, nil
}

func open(path string) (*bufio.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return bufio.NewReaderSize(dec, 64*1024), func() { dec.Close(); f.Close() }, nil
}
