package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storybook-server/internal/domain"
)

// postgresStoryRepository implements StoryRepository for PostgreSQL.
// The document itself lives in a jsonb column; id, title and creation
// time are lifted out for listing and lookups.
type postgresStoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStoryRepository(db *pgxpool.Pool, logger *zap.Logger) StoryRepository {
	return &postgresStoryRepository{db: db, logger: logger}
}

func (r *postgresStoryRepository) Insert(ctx context.Context, book *domain.StoryBook) (*StoryRecord, error) {
	record := &StoryRecord{
		ID:        uuid.New(),
		Title:     book.StoryTitle,
		Book:      *book,
		CreatedAt: time.Now().UTC(),
	}

	query := `INSERT INTO stories (id, title, data, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, record.ID, record.Title, record.Book, record.CreatedAt); err != nil {
		r.logger.Error("failed to insert story", zap.String("story_id", record.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("insert story %s: %w", record.ID, err)
	}

	r.logger.Info("story saved", zap.String("story_id", record.ID.String()), zap.String("title", record.Title))
	return record, nil
}

func (r *postgresStoryRepository) FindAll(ctx context.Context) ([]StoryRecord, error) {
	query := `SELECT id, title, data, created_at FROM stories ORDER BY created_at DESC`

	var records []StoryRecord
	if err := pgxscan.Select(ctx, r.db, &records, query); err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return records, nil
}

func (r *postgresStoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*StoryRecord, error) {
	query := `SELECT id, title, data, created_at FROM stories WHERE id = $1`

	var record StoryRecord
	if err := pgxscan.Get(ctx, r.db, &record, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("find story %s: %w", id, err)
	}
	return &record, nil
}

func (r *postgresStoryRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM stories WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete story %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStoryNotFound
	}

	r.logger.Info("story deleted", zap.String("story_id", id.String()))
	return nil
}
