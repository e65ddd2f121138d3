package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ridelink/internal/message/models"
	"ridelink/internal/sentinel"
	id "ridelink/pkg/domain"
)

const messageColumns = `id, thread_id, sender, recipient, kind, content_ref, template_code, is_template, created_at`

// PostgresStore persists messages. Direct messages have a NULL thread_id.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, m *models.Message) error {
	return s.SaveAll(ctx, []*models.Message{m})
}

// SaveAll inserts the batch in one transaction.
func (s *PostgresStore) SaveAll(ctx context.Context, msgs []*models.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin message batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, m := range msgs {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO messages (`+messageColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO NOTHING
		`,
			uuid.UUID(m.ID),
			nullableThreadID(m.ThreadID),
			m.Sender.String(),
			m.Recipient.String(),
			string(m.Kind),
			m.ContentRef,
			nullableCode(m.TemplateCode),
			m.IsTemplate,
			m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert message rows affected: %w", err)
		}
		if n == 0 {
			return sentinel.ErrConflict
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, messageID id.MessageID) (*models.Message, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, uuid.UUID(messageID))
	m, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) Delete(ctx context.Context, messageID id.MessageID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, uuid.UUID(messageID))
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, recipient id.Handle) ([]*models.Message, error) {
	return s.list(ctx, `SELECT `+messageColumns+` FROM messages WHERE recipient = $1 ORDER BY seq`, recipient.String())
}

func (s *PostgresStore) ListByThread(ctx context.Context, threadID id.ThreadID) ([]*models.Message, error) {
	return s.list(ctx, `SELECT `+messageColumns+` FROM messages WHERE thread_id = $1 ORDER BY seq`, uuid.UUID(threadID))
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (*models.Message, error) {
	var (
		m         models.Message
		messageID uuid.UUID
		threadID  uuid.NullUUID
		sender    string
		recipient string
		kind      string
		code      sql.NullInt16
	)
	err := row.Scan(&messageID, &threadID, &sender, &recipient, &kind, &m.ContentRef, &code, &m.IsTemplate, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.ID = id.MessageID(messageID)
	if threadID.Valid {
		m.ThreadID = id.ThreadID(threadID.UUID)
	}
	m.Sender = id.Handle(sender)
	m.Recipient = id.Handle(recipient)
	m.Kind = models.Kind(kind)
	if code.Valid {
		c := uint8(code.Int16)
		m.TemplateCode = &c
	}
	return &m, nil
}

func nullableThreadID(threadID id.ThreadID) uuid.NullUUID {
	if threadID.IsNil() {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(threadID), Valid: true}
}

func nullableCode(code *uint8) sql.NullInt16 {
	if code == nil {
		return sql.NullInt16{}
	}
	return sql.NullInt16{Int16: int16(*code), Valid: true}
}
