// Package audit implements the optional query audit log (component
// L.2): every resolved query is recorded as one row in MySQL,
// dispatched through a bounded channel so a slow write never adds
// latency to the HTTP response path.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/pkg/utils"
)

// Entry is one audit record.
type Entry struct {
	QueryID      string
	Kind         string // "single" or "batch"
	Lat, Lon     float64
	K            int
	LambdaFactor float64
	ResultCount  int
	TopResultID  int64
	LatencyMS    int64
	RecordedAt   time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS query_log (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	query_id VARCHAR(128) NOT NULL,
	kind VARCHAR(16) NOT NULL,
	lat DOUBLE NOT NULL,
	lon DOUBLE NOT NULL,
	k INT NOT NULL,
	lambda_factor DOUBLE NOT NULL,
	result_count INT NOT NULL,
	top_result_id BIGINT NOT NULL,
	latency_ms BIGINT NOT NULL,
	recorded_at DATETIME NOT NULL
)`

const insertSQL = `
INSERT INTO query_log
	(query_id, kind, lat, lon, k, lambda_factor, result_count, top_result_id, latency_ms, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Logger writes Entry values to MySQL from a fixed pool of worker
// goroutines fed by a bounded channel. Record never blocks the
// caller: a full channel drops the entry and counts it under the
// "dropped" status of metrics.AuditWritesTotal.
type Logger struct {
	db      *sql.DB
	logger  *utils.Logger
	entries chan Entry
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// Open connects to dsn, ensures the query_log table exists, and
// starts workerCount background writers.
func Open(dsn string, workerCount, channelBuffer int, logger *utils.Logger) (*Logger, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: ping: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: create table: %w", err)
	}

	if workerCount < 1 {
		workerCount = 4
	}
	if channelBuffer < 1 {
		channelBuffer = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Logger{
		db:      db,
		logger:  logger,
		entries: make(chan Entry, channelBuffer),
		cancel:  cancel,
	}

	for i := 0; i < workerCount; i++ {
		l.wg.Add(1)
		go l.worker(ctx)
	}
	metrics.MySQLConnectionStatus.Set(1)
	return l, nil
}

// Record enqueues e for asynchronous persistence. If the queue is
// full the entry is dropped and counted, never blocking the caller.
func (l *Logger) Record(e Entry) {
	select {
	case l.entries <- e:
	default:
		metrics.AuditWritesTotal.WithLabelValues("dropped").Inc()
		l.logger.Warn("audit queue full, dropping entry")
	}
}

func (l *Logger) worker(ctx context.Context) {
	defer l.wg.Done()
	for {
		select {
		case e, ok := <-l.entries:
			if !ok {
				return
			}
			l.write(ctx, e)
		case <-ctx.Done():
			return
		}
	}
}

func (l *Logger) write(ctx context.Context, e Entry) {
	start := time.Now()
	_, err := l.db.ExecContext(ctx, insertSQL,
		e.QueryID, e.Kind, e.Lat, e.Lon, e.K, e.LambdaFactor,
		e.ResultCount, e.TopResultID, e.LatencyMS, e.RecordedAt)
	metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.AuditWritesTotal.WithLabelValues("error").Inc()
		l.logger.WithError(err).Error("audit write failed")
		return
	}
	metrics.AuditWritesTotal.WithLabelValues("success").Inc()
}

// Close stops accepting new entries, waits for in-flight writes to
// drain, and closes the underlying connection pool.
func (l *Logger) Close() error {
	close(l.entries)
	l.wg.Wait()
	l.cancel()
	metrics.MySQLConnectionStatus.Set(0)
	return l.db.Close()
}
