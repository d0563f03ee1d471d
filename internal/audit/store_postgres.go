package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store on PostgreSQL via the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a pooled connection and verifies it with a short ping.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// Append inserts an audit event into the credential_audit_events table.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO credential_audit_events (
			id, timestamp, credential_id, variant, subject, operator,
			action, permissions, verdict, reason, client, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		event.CredentialID,
		event.Variant,
		event.Subject,
		event.Operator,
		string(event.Action),
		strings.Join(event.Permissions, ","),
		event.Verdict,
		event.Reason,
		event.Client,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySubject returns events for one patient, oldest first.
func (s *PostgresStore) ListBySubject(ctx context.Context, subject string) ([]Event, error) {
	query := `
		SELECT timestamp, credential_id, variant, subject, operator,
		       action, permissions, verdict, reason, client, request_id
		FROM credential_audit_events
		WHERE subject = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var action, permissions string
		if err := rows.Scan(
			&e.Timestamp, &e.CredentialID, &e.Variant, &e.Subject, &e.Operator,
			&action, &permissions, &e.Verdict, &e.Reason, &e.Client, &e.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		if permissions != "" {
			e.Permissions = strings.Split(permissions, ",")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
