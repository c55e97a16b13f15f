package recorder

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iurii2002/paradex-go/internal/stream"
)

// Config holds batching parameters.
type Config struct {
	// BatchSize is the number of rows to accumulate before flushing.
	BatchSize int

	// FlushInterval is the maximum time between flushes.
	FlushInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:     1000,
		FlushInterval: time.Second,
	}
}

// Metrics counts recorder activity.
type Metrics struct {
	Events    int64
	Inserts   int64
	Conflicts int64
	Errors    int64
	Flushes   int64
}

// Database executes batched inserts. *pgxpool.Pool satisfies it.
type Database interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// eventRow represents a row to be inserted into the channel_events table.
type eventRow struct {
	ID         uuid.UUID
	Channel    string
	Market     string
	ReceivedAt time.Time
	Payload    []byte
}

// eventNamespace scopes deterministic event ids (uuid v5).
var eventNamespace = uuid.MustParse("f3b1a5e8-0d2c-4b7a-9c41-8e5d2f6a7b39")

// eventID derives a stable id from the channel and payload. A frame
// replayed after a reconnect maps to the same row, so the insert's
// conflict clause deduplicates it.
func eventID(channel string, payload []byte) uuid.UUID {
	data := make([]byte, 0, len(channel)+1+len(payload))
	data = append(data, channel...)
	data = append(data, 0)
	data = append(data, payload...)
	return uuid.NewSHA1(eventNamespace, data)
}

// Recorder persists raw channel payloads as JSONB rows. A single
// recorder serves every subscription; its Callback can be registered on
// any number of channels.
type Recorder struct {
	cfg    Config
	logger *slog.Logger

	db Database

	batch       []eventRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	metrics Metrics
}

// New creates a Recorder writing to db.
func New(cfg Config, db Database, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		cfg:    cfg,
		db:     db,
		logger: logger,
		batch:  make([]eventRow, 0, cfg.BatchSize),
	}
}

// Callback returns a subscription callback that records every message.
func (r *Recorder) Callback() stream.Callback {
	return func(msg stream.Message) {
		r.record(msg)
	}
}

// Start begins the periodic flush loop.
func (r *Recorder) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.flushTicker = time.NewTicker(r.cfg.FlushInterval)

	r.wg.Add(1)
	go r.flushLoop()

	r.logger.Info("recorder started",
		"batch_size", r.cfg.BatchSize,
		"flush_interval", r.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the recorder and flushes remaining rows.
// The final flush runs on ctx, not the cancelled run context, so the
// last partial batch still reaches the database.
func (r *Recorder) Stop(ctx context.Context) error {
	r.logger.Info("stopping recorder")

	if r.cancel != nil {
		r.cancel()
	}
	if r.flushTicker != nil {
		r.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("recorder stopped")
	case <-ctx.Done():
		r.logger.Warn("recorder stop timed out")
	}

	// Final flush
	r.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (r *Recorder) Stats() Metrics {
	r.batchMu.Lock()
	defer r.batchMu.Unlock()
	return r.metrics
}

// flushLoop periodically flushes the batch.
func (r *Recorder) flushLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.flushTicker.C:
			r.flush(r.ctx)
		}
	}
}

// record transforms and adds a message to the batch.
func (r *Recorder) record(msg stream.Message) {
	row := r.transform(msg)

	r.batchMu.Lock()
	r.batch = append(r.batch, row)
	r.metrics.Events++
	shouldFlush := len(r.batch) >= r.cfg.BatchSize
	r.batchMu.Unlock()

	if shouldFlush {
		r.flush(r.ctx)
	}
}

// transform converts a stream message to an eventRow.
func (r *Recorder) transform(msg stream.Message) eventRow {
	return eventRow{
		ID:         eventID(msg.Channel, msg.Data),
		Channel:    msg.Channel,
		Market:     marketFromChannel(msg.Channel),
		ReceivedAt: time.Now().UTC(),
		Payload:    msg.Data,
	}
}

// marketFromChannel extracts the market segment from a resolved channel
// name, e.g. "trades.BTC-USD-PERP" or "order_book.ETH-USD-PERP.deltas".
// Singleton channels like "positions" have no market.
func marketFromChannel(resolved string) string {
	parts := strings.Split(resolved, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// flush writes the current batch to the database.
func (r *Recorder) flush(ctx context.Context) {
	r.batchMu.Lock()
	if len(r.batch) == 0 {
		r.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := r.batch
	r.batch = make([]eventRow, 0, r.cfg.BatchSize)
	r.batchMu.Unlock()

	start := time.Now()

	conflicts, err := r.batchInsert(ctx, batch)
	if err != nil {
		r.logger.Error("batch insert failed", "error", err, "count", len(batch))
		r.batchMu.Lock()
		r.metrics.Errors++
		r.batchMu.Unlock()
		return
	}

	r.batchMu.Lock()
	r.metrics.Inserts += int64(len(batch) - conflicts)
	r.metrics.Conflicts += int64(conflicts)
	r.metrics.Flushes++
	r.batchMu.Unlock()

	r.logger.Debug("flushed events",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (r *Recorder) batchInsert(ctx context.Context, rows []eventRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO channel_events (id, channel, market, received_at, payload)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, row.ID, row.Channel, row.Market, row.ReceivedAt, row.Payload)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
