package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/frameweavers/showreel/internal/model"
	"github.com/jmoiron/sqlx"
)

var (
	ErrEntryNotFound = errors.New("catalog entry not found")
	ErrBadQuery      = errors.New("failed to build query")
)

// builder renders $n placeholders, which both pgx and modernc sqlite accept.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// EntryRepository is the catalog store. Entries always come back in display
// order: sort_order ascending, newest first on ties.
type EntryRepository interface {
	Create(ctx context.Context, entry *model.CatalogEntry) error
	Entries(ctx context.Context) ([]*model.CatalogEntry, error)
	ByID(ctx context.Context, id string) (*model.CatalogEntry, error)
	Update(ctx context.Context, entry *model.CatalogEntry) error
	UpdateOrders(ctx context.Context, entries ...*model.CatalogEntry) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type entryRepository struct {
	db *sqlx.DB
}

func NewEntryRepository(db *sqlx.DB) EntryRepository {
	return &entryRepository{db: db}
}

const entryTable = "catalog_entries"

var entryColumns = []string{
	"id", "title", "category", "description", "image_url", "image_handle",
	"video_url", "video_handle", "sort_order", "created_at", "updated_at",
}

func (r *entryRepository) Create(ctx context.Context, entry *model.CatalogEntry) error {
	query, args, err := builder.
		Insert(entryTable).
		Columns(entryColumns...).
		Values(
			entry.ID,
			entry.Title,
			entry.Category,
			entry.Description,
			entry.ImageURL,
			entry.ImageHandle,
			entry.VideoURL,
			entry.VideoHandle,
			entry.Order,
			entry.CreatedAt,
			entry.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *entryRepository) Entries(ctx context.Context) ([]*model.CatalogEntry, error) {
	query, args, err := builder.
		Select(entryColumns...).
		From(entryTable).
		OrderBy("sort_order ASC", "created_at DESC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	entries := []*model.CatalogEntry{}
	err = r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *entryRepository) ByID(ctx context.Context, id string) (*model.CatalogEntry, error) {
	query, args, err := builder.
		Select(entryColumns...).
		From(entryTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	entry := &model.CatalogEntry{}
	err = r.db.GetContext(ctx, entry, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *entryRepository) Update(ctx context.Context, entry *model.CatalogEntry) error {
	entry.UpdatedAt = time.Now()
	query, args, err := builder.
		Update(entryTable).
		SetMap(map[string]any{
			"title":        entry.Title,
			"category":     entry.Category,
			"description":  entry.Description,
			"image_url":    entry.ImageURL,
			"image_handle": entry.ImageHandle,
			"video_url":    entry.VideoURL,
			"video_handle": entry.VideoHandle,
			"sort_order":   entry.Order,
			"updated_at":   entry.UpdatedAt,
		}).
		Where(sq.Eq{"id": entry.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// UpdateOrders persists the order key of every given entry in one transaction.
func (r *entryRepository) UpdateOrders(ctx context.Context, entries ...*model.CatalogEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for _, entry := range entries {
		query, args, err := builder.
			Update(entryTable).
			Set("sort_order", entry.Order).
			Set("updated_at", now).
			Where(sq.Eq{"id": entry.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadQuery, err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		err = requireRow(result)
		if err != nil {
			return fmt.Errorf("entry %s: %w", entry.ID, err)
		}
		entry.UpdatedAt = now
	}

	return tx.Commit()
}

func (r *entryRepository) Delete(ctx context.Context, id string) error {
	query, args, err := builder.
		Delete(entryTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireRow(result)
}

func (r *entryRepository) Count(ctx context.Context) (int, error) {
	query, args, err := builder.Select("COUNT(*)").From(entryTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	var count int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrEntryNotFound
	}

	return nil
}
