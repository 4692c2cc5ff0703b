package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domainRepo "dental-center/internal/domain/repository"
)

type sqliteSlotRepository struct {
	db *sql.DB
}

// NewSQLiteSlotRepository stores slots in the `state` table created by database.NewSQLiteConnection
func NewSQLiteSlotRepository(db *sql.DB) domainRepo.SlotRepository {
	return &sqliteSlotRepository{db: db}
}

func (r *sqliteSlotRepository) Read(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM state WHERE bucket = ?`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainRepo.ErrSlotNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, nil
}

func (r *sqliteSlotRepository) Write(ctx context.Context, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO state(bucket, payload) VALUES(?, ?) ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
		key, payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (r *sqliteSlotRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM state WHERE bucket = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
