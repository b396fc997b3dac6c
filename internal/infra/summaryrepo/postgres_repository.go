package summaryrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/video-summarizer/internal/domain/video"
)

const schema = `
CREATE TABLE IF NOT EXISTS video_summaries (
	video_id          TEXT PRIMARY KEY,
	title             TEXT NOT NULL DEFAULT '',
	link              TEXT NOT NULL,
	language          TEXT NOT NULL DEFAULT '',
	summary           TEXT[] NOT NULL,
	attempts          INTEGER NOT NULL,
	chunks            INTEGER NOT NULL,
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens      INTEGER NOT NULL DEFAULT 0,
	model             TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL
)`

// PostgresRepository implements video.SummaryRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the summaries table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Find fetches the summary stored for a video.
func (r *PostgresRepository) Find(ctx context.Context, videoID string) (video.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT video_id, title, link, language, summary, attempts, chunks,
		       prompt_tokens, completion_tokens, total_tokens, model, created_at
		FROM video_summaries
		WHERE video_id = $1
	`, videoID)
	var rec video.Record
	err := row.Scan(
		&rec.VideoID, &rec.Title, &rec.Link, &rec.Language, &rec.Summary, &rec.Attempts, &rec.Chunks,
		&rec.Usage.PromptTokens, &rec.Usage.CompletionTokens, &rec.Usage.TotalTokens, &rec.Model, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return video.Record{}, false, nil
	}
	if err != nil {
		return video.Record{}, false, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

// Upsert inserts or replaces the summary for a video.
func (r *PostgresRepository) Upsert(ctx context.Context, rec video.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO video_summaries (
			video_id, title, link, language, summary, attempts, chunks,
			prompt_tokens, completion_tokens, total_tokens, model, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (video_id) DO UPDATE SET
			title = EXCLUDED.title,
			link = EXCLUDED.link,
			language = EXCLUDED.language,
			summary = EXCLUDED.summary,
			attempts = EXCLUDED.attempts,
			chunks = EXCLUDED.chunks,
			prompt_tokens = EXCLUDED.prompt_tokens,
			completion_tokens = EXCLUDED.completion_tokens,
			total_tokens = EXCLUDED.total_tokens,
			model = EXCLUDED.model,
			created_at = EXCLUDED.created_at
	`,
		rec.VideoID, rec.Title, rec.Link, rec.Language, rec.Summary, rec.Attempts, rec.Chunks,
		rec.Usage.PromptTokens, rec.Usage.CompletionTokens, rec.Usage.TotalTokens, rec.Model, rec.CreatedAt,
	)
	return err
}

var _ video.SummaryRepository = (*PostgresRepository)(nil)
