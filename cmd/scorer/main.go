package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/config"
	persistence "github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/persistence/postgres"
	"github.com/marcelohfonseca/prj-clube-mais-saudavel/internal/runner"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	records := persistence.NewRecordRepository(pool)
	ledger := persistence.NewLedgerRepository(pool)

	scoreRunner, err := runner.New(records, ledger, cfg.Scoring)
	if err != nil {
		log.Fatalf("invalid scoring configuration: %v", err)
	}

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}
	go func() {
		log.Printf("scorer metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	ticker := time.NewTicker(cfg.ScoreInterval)
	defer ticker.Stop()

	log.Printf("scorer started (interval=%s)", cfg.ScoreInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	scoreAll(ctx, records, scoreRunner)

	for {
		select {
		case <-ctx.Done():
			goto shutdown
		case <-ticker.C:
			scoreAll(ctx, records, scoreRunner)
		case <-stop:
			log.Println("scorer received shutdown signal")
			cancel()
			goto shutdown
		}
	}

shutdown:
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
}

// scoreAll runs one recompute per known club. Failures are per club: one bad
// club does not block the others.
func scoreAll(ctx context.Context, records *persistence.RecordRepository, scoreRunner *runner.Runner) {
	clubs, err := records.Clubs(ctx)
	if err != nil {
		log.Printf("list clubs: %v", err)
		return
	}
	for _, clubID := range clubs {
		if _, err := scoreRunner.Run(ctx, clubID); err != nil {
			log.Printf("score club %s: %v", clubID, err)
		}
	}
}
