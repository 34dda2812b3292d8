package main

import (
	"log"
	"sync/atomic"

	"structplace.ai/internal/persistence/indexdb"
	plog "structplace.ai/internal/persistence/log"
)

// recorder fans answered queries out to the JSONL logs and the index.
type recorder struct {
	log       *log.Logger
	locates   *plog.LocateLogger
	decisions *plog.DecisionLogger
	index     *indexdb.SQLiteIndex
	digest    atomic.Value // string

	locateTotal   atomic.Uint64
	decisionTotal atomic.Uint64
}

func (r *recorder) setDigest(d string) { r.digest.Store(d) }

func (r *recorder) currentDigest() string {
	d, _ := r.digest.Load().(string)
	return d
}

func (r *recorder) Locate(e plog.LocateEntry) {
	r.locateTotal.Add(1)
	if r.locates != nil {
		if err := r.locates.WriteLocate(e); err != nil {
			r.log.Printf("locate log: %v", err)
		}
	}
	r.index.RecordLocate(r.currentDigest(), e)
}

func (r *recorder) Decision(e plog.DecisionEntry) {
	r.decisionTotal.Add(1)
	if r.decisions != nil {
		if err := r.decisions.WriteDecision(e); err != nil {
			r.log.Printf("decision log: %v", err)
		}
	}
	r.index.RecordDecision(e)
}

func (r *recorder) Close() {
	if r.locates != nil {
		_ = r.locates.Close()
	}
	if r.decisions != nil {
		_ = r.decisions.Close()
	}
	if r.index != nil {
		_ = r.index.Close()
	}
}
