package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsTrendMonitor/internal/domain"
	"NewsTrendMonitor/internal/ports"
)

// PostgresRepository persists scored items and spike events into Postgres.
// It backs the latest/spikes read paths; the core analysis itself never
// requires durable state.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.TrendStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveItems upserts scored items keyed by link.
func (r *PostgresRepository) SaveItems(ctx context.Context, items []domain.ScoredItem) error {
	if r.db == nil || len(items) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("news_items").
		Columns("link", "title", "summary", "source", "keyword",
			"sentiment_score", "confidence", "published_at", "collected_at")

	for _, item := range items {
		insert = insert.Values(item.Link, item.Title, item.Summary, item.Source,
			item.Keyword, item.SentimentScore, item.Confidence,
			item.PublishedAt, item.CollectedAt)
	}

	query, args, err := insert.
		Suffix(`ON CONFLICT (link) DO UPDATE
                SET sentiment_score = EXCLUDED.sentiment_score,
                    confidence = EXCLUDED.confidence,
                    collected_at = EXCLUDED.collected_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert items: %w", err)
	}

	return nil
}

// SaveSpikes appends detected spike events.
func (r *PostgresRepository) SaveSpikes(ctx context.Context, spikes []domain.SpikeEvent) error {
	if r.db == nil || len(spikes) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("spike_events").
		Columns("keyword", "bucket_ts", "score", "value", "detected_at")

	for _, s := range spikes {
		insert = insert.Values(s.Keyword, s.Timestamp, s.Score, s.Value, s.DetectedAt)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build spikes insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert spikes: %w", err)
	}

	return nil
}

// RecentItems returns items published at or after the cutoff, newest first.
func (r *PostgresRepository) RecentItems(ctx context.Context, since time.Time, limit int) ([]domain.ScoredItem, error) {
	if r.db == nil {
		return []domain.ScoredItem{}, nil
	}

	query, args, err := r.builder.
		Select("link", "title", "summary", "source", "keyword",
			"sentiment_score", "confidence", "published_at", "collected_at").
		From("news_items").
		Where(sq.GtOrEq{"published_at": since}).
		OrderBy("published_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ScoredItem, 0)
	for rows.Next() {
		var item domain.ScoredItem
		if err := rows.Scan(&item.Link, &item.Title, &item.Summary, &item.Source,
			&item.Keyword, &item.SentimentScore, &item.Confidence,
			&item.PublishedAt, &item.CollectedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return items, nil
}

// RecentSpikes returns the most recently detected spike events.
func (r *PostgresRepository) RecentSpikes(ctx context.Context, limit int) ([]domain.SpikeEvent, error) {
	if r.db == nil {
		return []domain.SpikeEvent{}, nil
	}

	query, args, err := r.builder.
		Select("keyword", "bucket_ts", "score", "value", "detected_at").
		From("spike_events").
		OrderBy("detected_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build spikes select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent spikes: %w", err)
	}
	defer rows.Close()

	spikes := make([]domain.SpikeEvent, 0)
	for rows.Next() {
		var s domain.SpikeEvent
		if err := rows.Scan(&s.Keyword, &s.Timestamp, &s.Score, &s.Value, &s.DetectedAt); err != nil {
			return nil, fmt.Errorf("scan spike: %w", err)
		}
		spikes = append(spikes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return spikes, nil
}
