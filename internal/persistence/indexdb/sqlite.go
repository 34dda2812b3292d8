package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	plog "structplace.ai/internal/persistence/log"
	"structplace.ai/internal/sim/resolve"
	"structplace.ai/internal/sim/tuning"
)

// SQLiteIndex is a queryable secondary index of locate and decide results.
// Writes are queued to one writer goroutine and dropped when it falls behind;
// the JSONL logs remain the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropLocate   atomic.Uint64
	dropDecision atomic.Uint64
}

type reqKind int

const (
	reqLocate reqKind = iota + 1
	reqDecision
	reqFlush
)

type req struct {
	kind reqKind

	locate   locateRow
	decision plog.DecisionEntry
	done     chan struct{}
}

type locateRow struct {
	ID     string
	Digest string
	Entry  plog.LocateEntry
}

type Stats struct {
	DropLocateTotal   uint64 `json:"drop_locate_total"`
	DropDecisionTotal uint64 `json:"drop_decision_total"`
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
}

type LocateRow struct {
	ID             string `json:"id"`
	RecordedAt     string `json:"recorded_at"`
	ConfigDigest   string `json:"config_digest"`
	Seed           int64  `json:"seed"`
	Target         string `json:"target"`
	Found          bool   `json:"found"`
	ChunkX         int    `json:"chunk_x"`
	ChunkZ         int    `json:"chunk_z"`
	Biome          string `json:"biome,omitempty"`
	ChunksSearched int    `json:"chunks_searched"`
	Radius         int    `json:"radius"`
}

type DecisionRow struct {
	Seed           int64  `json:"seed"`
	ChunkX         int    `json:"chunk_x"`
	ChunkZ         int    `json:"chunk_z"`
	Biome          string `json:"biome"`
	PlacementChunk bool   `json:"placement_chunk"`
	Gated          bool   `json:"gated"`
	StructureID    string `json:"structure_id,omitempty"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS configs (
			digest TEXT PRIMARY KEY,
			structure_set TEXT NOT NULL,
			seed INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS resolutions (
			digest TEXT PRIMARY KEY,
			structure_set TEXT NOT NULL,
			spacing INTEGER NOT NULL,
			separation INTEGER NOT NULL,
			salt INTEGER NOT NULL,
			spread_type TEXT NOT NULL,
			sources_json TEXT NOT NULL,
			warnings_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS locates (
			id TEXT PRIMARY KEY,
			recorded_at TEXT NOT NULL,
			config_digest TEXT NOT NULL,
			seed INTEGER NOT NULL,
			target TEXT NOT NULL,
			start_x INTEGER NOT NULL,
			start_y INTEGER NOT NULL,
			start_z INTEGER NOT NULL,
			found INTEGER NOT NULL,
			chunk_x INTEGER NOT NULL,
			chunk_z INTEGER NOT NULL,
			biome TEXT,
			chunks_searched INTEGER NOT NULL,
			radius INTEGER NOT NULL,
			ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_locates_target ON locates(target, recorded_at);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			seed INTEGER NOT NULL,
			chunk_x INTEGER NOT NULL,
			chunk_z INTEGER NOT NULL,
			biome TEXT NOT NULL,
			placement_chunk INTEGER NOT NULL,
			frequency REAL NOT NULL,
			roll REAL NOT NULL,
			gated INTEGER NOT NULL,
			structure_id TEXT,
			PRIMARY KEY (seed, chunk_x, chunk_z)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_structure ON decisions(structure_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		DropLocateTotal:   s.dropLocate.Load(),
		DropDecisionTotal: s.dropDecision.Load(),
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
	}
}

// RecordLocate queues e and returns the row id it will be stored under.
func (s *SQLiteIndex) RecordLocate(configDigest string, e plog.LocateEntry) string {
	if s == nil || s.closed.Load() {
		return ""
	}
	id := e.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	select {
	case s.ch <- req{kind: reqLocate, locate: locateRow{ID: id, Digest: configDigest, Entry: e}}:
	default:
		s.dropLocate.Add(1)
	}
	return id
}

func (s *SQLiteIndex) RecordDecision(e plog.DecisionEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqDecision, decision: e}:
	default:
		s.dropDecision.Add(1)
	}
}

// Flush blocks until every queued write before it is committed.
func (s *SQLiteIndex) Flush(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqFlush, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConfigDigest is the sha256 of the canonical JSON of cfg.
func ConfigDigest(cfg tuning.Config) (string, []byte) {
	b, _ := json.Marshal(cfg)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), b
}

// UpsertConfig stores the config we actually apply together with its
// resolved placement, keyed by digest.
func (s *SQLiteIndex) UpsertConfig(cfg tuning.Config, r resolve.Resolved) (string, error) {
	digest, raw := ConfigDigest(cfg)
	if s == nil {
		return digest, nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	sources, _ := json.Marshal(r.Sources)
	warnings, _ := json.Marshal(r.Warnings)
	if r.Warnings == nil {
		warnings = []byte("[]")
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return digest, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return digest, err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('current_config',?)`, digest); err != nil {
		return digest, err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO configs(digest,structure_set,seed,json,updated_at) VALUES(?,?,?,?,?)`,
		digest, cfg.StructureSet, cfg.Seed, string(raw), now); err != nil {
		return digest, err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO resolutions(digest,structure_set,spacing,separation,salt,spread_type,sources_json,warnings_json) VALUES(?,?,?,?,?,?,?,?)`,
		digest, r.StructureSet, r.Spacing, r.Separation, int64(r.Salt), string(r.Spread), string(sources), string(warnings)); err != nil {
		return digest, err
	}
	return digest, tx.Commit()
}

// RecentLocates returns the newest locate rows for target, newest first.
// An empty target lists every target.
func (s *SQLiteIndex) RecentLocates(ctx context.Context, target string, limit int) ([]LocateRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,recorded_at,config_digest,seed,target,found,chunk_x,chunk_z,COALESCE(biome,''),chunks_searched,radius
		FROM locates WHERE (?='' OR target=?) ORDER BY recorded_at DESC, id LIMIT ?`,
		target, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LocateRow
	for rows.Next() {
		var r LocateRow
		var found int
		if err := rows.Scan(&r.ID, &r.RecordedAt, &r.ConfigDigest, &r.Seed, &r.Target, &found,
			&r.ChunkX, &r.ChunkZ, &r.Biome, &r.ChunksSearched, &r.Radius); err != nil {
			return nil, err
		}
		r.Found = found != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Decision returns the stored decision for one chunk, if any.
func (s *SQLiteIndex) Decision(ctx context.Context, seed int64, chunkX, chunkZ int) (DecisionRow, bool, error) {
	r := DecisionRow{Seed: seed, ChunkX: chunkX, ChunkZ: chunkZ}
	var placement, gated int
	err := s.db.QueryRowContext(ctx,
		`SELECT biome,placement_chunk,gated,COALESCE(structure_id,'') FROM decisions WHERE seed=? AND chunk_x=? AND chunk_z=?`,
		seed, chunkX, chunkZ).Scan(&r.Biome, &placement, &gated, &r.StructureID)
	if err == sql.ErrNoRows {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	r.PlacementChunk = placement != 0
	r.Gated = gated != 0
	return r, true, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertLocate, _ := s.db.Prepare(`INSERT OR REPLACE INTO locates(id,recorded_at,config_digest,seed,target,start_x,start_y,start_z,found,chunk_x,chunk_z,biome,chunks_searched,radius,ms) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	insertDecision, _ := s.db.Prepare(`INSERT OR REPLACE INTO decisions(seed,chunk_x,chunk_z,biome,placement_chunk,frequency,roll,gated,structure_id) VALUES(?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertLocate != nil {
			_ = insertLocate.Close()
		}
		if insertDecision != nil {
			_ = insertDecision.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 1000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		if r.kind == reqFlush {
			commit()
			close(r.done)
			continue
		}
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqLocate:
			e := r.locate.Entry
			at := e.Time
			if at.IsZero() {
				at = time.Now()
			}
			if insertLocate != nil {
				if _, err := tx.Stmt(insertLocate).Exec(
					r.locate.ID,
					at.UTC().Format(time.RFC3339Nano),
					r.locate.Digest,
					e.Seed,
					e.Target,
					e.Start[0], e.Start[1], e.Start[2],
					boolInt(e.Found),
					e.Chunk[0], e.Chunk[1],
					e.Biome,
					e.ChunksSearched,
					e.Radius,
					e.Millis,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqDecision:
			d := r.decision
			if insertDecision != nil {
				if _, err := tx.Stmt(insertDecision).Exec(
					d.Seed,
					d.Chunk[0], d.Chunk[1],
					d.Biome,
					boolInt(d.PlacementChunk),
					d.Frequency,
					d.Roll,
					boolInt(d.Gated),
					d.StructureID,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
