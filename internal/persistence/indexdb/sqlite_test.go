package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	plog "structplace.ai/internal/persistence/log"
	"structplace.ai/internal/sim/resolve"
	"structplace.ai/internal/sim/tuning"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqDecision}

	if id := s.RecordLocate("d", plog.LocateEntry{Target: "x:y"}); id == "" {
		t.Fatalf("expected generated id even when dropped")
	}
	s.RecordDecision(plog.DecisionEntry{Seed: 1})

	st := s.Stats()
	if st.DropLocateTotal != 1 {
		t.Fatalf("DropLocateTotal=%d want=1", st.DropLocateTotal)
	}
	if st.DropDecisionTotal != 1 {
		t.Fatalf("DropDecisionTotal=%d want=1", st.DropDecisionTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_RecordLocateAndDecision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idx.RecordLocate("digest1", plog.LocateEntry{
		Time: at, RequestID: "req-1", Seed: 42, Target: "minecraft:village_plains",
		Start: [3]int{0, 64, 0}, Found: true, Chunk: [2]int{5, -3}, Biome: "minecraft:plains",
		ChunksSearched: 7, Radius: 100,
	})
	idx.RecordLocate("digest1", plog.LocateEntry{
		Time: at.Add(time.Minute), Seed: 42, Target: "minecraft:village_desert", Radius: 10,
	})
	idx.RecordDecision(plog.DecisionEntry{
		Seed: 42, Chunk: [2]int{5, -3}, Biome: "minecraft:plains", PlacementChunk: true,
		Frequency: 1, Roll: 0.3, StructureID: "minecraft:village_plains",
	})
	if err := idx.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	rows, err := idx.RecentLocates(context.Background(), "minecraft:village_plains", 10)
	if err != nil {
		t.Fatalf("RecentLocates: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "req-1" || !rows[0].Found || rows[0].ChunkX != 5 || rows[0].ChunkZ != -3 {
		t.Fatalf("row mismatch: %+v", rows)
	}
	all, err := idx.RecentLocates(context.Background(), "", 10)
	if err != nil || len(all) != 2 || all[0].Target != "minecraft:village_desert" {
		t.Fatalf("all rows: %+v err=%v", all, err)
	}
	if all[0].ID == "" {
		t.Fatalf("expected generated id for locate without request id")
	}

	d, ok, err := idx.Decision(context.Background(), 42, 5, -3)
	if err != nil || !ok {
		t.Fatalf("Decision: ok=%v err=%v", ok, err)
	}
	if !d.PlacementChunk || d.Gated || d.StructureID != "minecraft:village_plains" {
		t.Fatalf("decision mismatch: %+v", d)
	}
	if _, ok, err := idx.Decision(context.Background(), 42, 0, 0); ok || err != nil {
		t.Fatalf("expected missing decision, ok=%v err=%v", ok, err)
	}
}

func TestSQLiteIndex_UpsertConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	cfg := tuning.Defaults()
	r := resolve.Resolve(cfg.StructureSet, cfg.Placement, cfg.Registry)
	digest, err := idx.UpsertConfig(cfg, r)
	if err != nil {
		t.Fatalf("UpsertConfig: %v", err)
	}
	if again, _ := ConfigDigest(cfg); again != digest || len(digest) != 64 {
		t.Fatalf("digest not stable: %q vs %q", again, digest)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		current    string
		spacing    int
		separation int
		salt       int64
		spread     string
	)
	if err := db.QueryRow(`SELECT value FROM meta WHERE key='current_config'`).Scan(&current); err != nil {
		t.Fatalf("Scan meta: %v", err)
	}
	row := db.QueryRow(`SELECT spacing,separation,salt,spread_type FROM resolutions WHERE digest=?`, current)
	if err := row.Scan(&spacing, &separation, &salt, &spread); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if current != digest || spacing != 34 || separation != 8 || salt != 10387312 || spread != "LINEAR" {
		t.Fatalf("row mismatch: digest=%s spacing=%d separation=%d salt=%d spread=%s", current, spacing, separation, salt, spread)
	}
}
