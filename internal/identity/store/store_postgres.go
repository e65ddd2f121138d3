package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"ridelink/internal/identity/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
)

// PostgresStore persists identity records in PostgreSQL. Proofs are stored as
// a JSONB array; reputation as NUMERIC(20,0) so the full uint64 range fits.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, rec *models.Record) error {
	proofs, err := marshalProofs(rec.Proofs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO identities (handle, display_name, status, proofs, reputation, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5::numeric, $6, $7)
		ON CONFLICT (handle) DO NOTHING
	`,
		rec.Handle.String(),
		rec.DisplayName,
		string(rec.Status),
		proofs,
		strconv.FormatUint(rec.Reputation, 10),
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert identity rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByHandle(ctx context.Context, handle id.Handle) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT handle, display_name, status, proofs, reputation::text, created_at, updated_at
		FROM identities
		WHERE handle = $1
	`, handle.String())

	var (
		rec        models.Record
		rawHandle  string
		status     string
		proofs     []byte
		reputation string
	)
	err := row.Scan(&rawHandle, &rec.DisplayName, &status, &proofs, &reputation, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	rec.Handle = id.Handle(rawHandle)
	rec.Status = models.Status(status)
	if err := json.Unmarshal(proofs, &rec.Proofs); err != nil {
		return nil, fmt.Errorf("decode proofs: %w", err)
	}
	if rec.Proofs == nil {
		rec.Proofs = []string{}
	}
	if rec.Reputation, err = strconv.ParseUint(reputation, 10, 64); err != nil {
		return nil, fmt.Errorf("decode reputation: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec *models.Record) error {
	proofs, err := marshalProofs(rec.Proofs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE identities
		SET display_name = $2, status = $3, proofs = $4::jsonb, reputation = $5::numeric, updated_at = $6
		WHERE handle = $1
	`,
		rec.Handle.String(),
		rec.DisplayName,
		string(rec.Status),
		proofs,
		strconv.FormatUint(rec.Reputation, 10),
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update identity rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func marshalProofs(proofs []string) (string, error) {
	if proofs == nil {
		proofs = []string{}
	}
	b, err := json.Marshal(proofs)
	if err != nil {
		return "", fmt.Errorf("encode proofs: %w", err)
	}
	return string(b), nil
}
