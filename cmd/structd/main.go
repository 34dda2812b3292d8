package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"structplace.ai/internal/persistence/indexdb"
	plog "structplace.ai/internal/persistence/log"
	"structplace.ai/internal/sim/engine"
	"structplace.ai/internal/sim/tuning"
	"structplace.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configPath = flag.String("config", "./configs/structures.yaml", "structure config path")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		seed       = flag.Int64("seed", 0, "override the configured world seed (0 keeps the config value)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite locate/decision index")
		disableLog = flag.Bool("disable_log", false, "disable the zstd JSONL decision/locate logs")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[structd] ", log.LstdFlags|log.Lmicroseconds)

	load := func() (tuning.Config, error) {
		cfg, err := tuning.Load(*configPath)
		if err != nil {
			return cfg, err
		}
		if *seed != 0 {
			cfg.Seed = *seed
		}
		return cfg, nil
	}

	cfg, err := load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	rt, err := engine.NewRuntime(cfg)
	if err != nil {
		logger.Fatalf("engine: %v", err)
	}
	rt.View(func(e *engine.Engine) {
		for _, w := range e.Warnings() {
			logger.Printf("warning: %s", w)
		}
		for _, line := range e.Resolved().Describe() {
			logger.Printf("placement %s", line)
		}
	})

	_ = os.MkdirAll(*dataDir, 0o755)
	rec := &recorder{log: logger}
	defer rec.Close()
	if !*disableLog {
		rec.locates = plog.NewLocateLogger(*dataDir)
		rec.decisions = plog.NewDecisionLogger(*dataDir)
	}
	if !*disableDB {
		idx, err := indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("index: %v", err)
		}
		rec.index = idx
	}
	upsert := func(cfg tuning.Config) {
		var digest string
		var err error
		rt.View(func(e *engine.Engine) {
			digest, err = rec.index.UpsertConfig(cfg, e.Resolved())
		})
		if err != nil {
			logger.Printf("index config: %v", err)
		}
		rec.setDigest(digest)
	}
	upsert(cfg)

	reload := func() error {
		cfg, err := load()
		if err != nil {
			return err
		}
		if err := rt.Reload(cfg); err != nil {
			return err
		}
		upsert(cfg)
		return nil
	}

	srv := ws.NewServer(rt, logger, ws.Options{Recorder: rec, Reload: reload, Index: rec.index})

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	srv.Routes(mux)
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP structd_locate_total Locate queries answered.\n")
		fmt.Fprintf(rw, "# TYPE structd_locate_total counter\n")
		fmt.Fprintf(rw, "structd_locate_total %d\n", rec.locateTotal.Load())
		fmt.Fprintf(rw, "# HELP structd_decide_total Decide queries answered.\n")
		fmt.Fprintf(rw, "# TYPE structd_decide_total counter\n")
		fmt.Fprintf(rw, "structd_decide_total %d\n", rec.decisionTotal.Load())
		fmt.Fprintf(rw, "# HELP structd_reload_total Successful config reloads.\n")
		fmt.Fprintf(rw, "# TYPE structd_reload_total counter\n")
		fmt.Fprintf(rw, "structd_reload_total %d\n", rt.Reloads())

		st := rec.index.Stats()
		fmt.Fprintf(rw, "# HELP structd_index_dropped_total Index writes dropped because the queue was full.\n")
		fmt.Fprintf(rw, "# TYPE structd_index_dropped_total counter\n")
		fmt.Fprintf(rw, "structd_index_dropped_total{kind=\"locate\"} %d\n", st.DropLocateTotal)
		fmt.Fprintf(rw, "structd_index_dropped_total{kind=\"decision\"} %d\n", st.DropDecisionTotal)
		fmt.Fprintf(rw, "# HELP structd_index_queue_depth Pending index writes.\n")
		fmt.Fprintf(rw, "# TYPE structd_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "structd_index_queue_depth %d\n", st.QueueDepth)
	})

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = httpSrv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (seed=%d set=%s)", *addr, rt.Seed(), rt.Resolved().StructureSet)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
