package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ridelink/internal/receipt/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
)

// PostgresStore appends receipts; seq preserves arrival order when
// timestamps collide.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, r *models.Receipt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (id, message_id, reader, recipient, status, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		uuid.UUID(r.ID),
		uuid.UUID(r.MessageID),
		r.Reader.String(),
		r.Recipient.String(),
		string(r.Status),
		r.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByMessage(ctx context.Context, messageID id.MessageID) ([]*models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message_id, reader, recipient, status, recorded_at
		FROM receipts
		WHERE message_id = $1
		ORDER BY seq
	`, uuid.UUID(messageID))
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Receipt, 0)
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Latest(ctx context.Context, messageID id.MessageID, reader id.Handle) (*models.Receipt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, message_id, reader, recipient, status, recorded_at
		FROM receipts
		WHERE message_id = $1 AND reader = $2
		ORDER BY seq DESC
		LIMIT 1
	`, uuid.UUID(messageID), reader.String())
	r, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("latest receipt: %w", err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row scanner) (*models.Receipt, error) {
	var (
		r         models.Receipt
		receiptID uuid.UUID
		messageID uuid.UUID
		reader    string
		recipient string
		status    string
	)
	if err := row.Scan(&receiptID, &messageID, &reader, &recipient, &status, &r.RecordedAt); err != nil {
		return nil, err
	}
	r.ID = id.ReceiptID(receiptID)
	r.MessageID = id.MessageID(messageID)
	r.Reader = id.Handle(reader)
	r.Recipient = id.Handle(recipient)
	r.Status = models.Status(status)
	return &r, nil
}
