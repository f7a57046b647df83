package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"xainik/internal/referral"
	"xainik/internal/referral/models"
	id "xainik/pkg/domain"
	"xainik/pkg/platform/sentinel"
)

// PostgresEventStore persists events and fills the outbox in one transaction,
// so every stored event is eventually mirrored to the stream exactly when the
// insert itself succeeded.
type PostgresEventStore struct {
	db *sql.DB
}

// NewPostgres creates a postgres-backed event store.
func NewPostgres(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

// Insert appends one event. The unique index on (referral_id, event_type,
// debounce_key, dedupe_bucket) turns same-bucket duplicates into
// sentinel.ErrDuplicateEvent instead of a second row.
func (s *PostgresEventStore) Insert(ctx context.Context, event *models.Event) error {
	payload, err := models.EncodeEventPayload(event)
	if err != nil {
		return fmt.Errorf("encode outbox payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertEvent = `
		INSERT INTO referral_events (
			id, referral_id, event_type, platform, user_agent,
			ip_hash, debounce_key, dedupe_bucket, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (referral_id, event_type, debounce_key, dedupe_bucket) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, insertEvent,
		event.ID,
		uuid.UUID(event.ReferralID),
		string(event.Type),
		string(event.Platform),
		nullString(event.UserAgent),
		nullString(event.IPHash),
		event.DebounceKey,
		referral.DedupeBucket(event.OccurredAt),
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert referral event: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sentinel.ErrDuplicateEvent
	}

	const insertOutbox = `
		INSERT INTO referral_event_outbox (id, key, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, insertOutbox,
		event.ID,
		event.ReferralID.String(),
		payload,
		event.OccurredAt,
	); err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event insert: %w", err)
	}
	return nil
}

// FindRecent returns the newest matching event at or after since, nil if none.
func (s *PostgresEventStore) FindRecent(ctx context.Context, referralID id.ReferralID, eventType id.EventType, debounceKey string, since time.Time) (*models.Event, error) {
	const query = `
		SELECT id, referral_id, event_type, platform, user_agent,
		       ip_hash, debounce_key, occurred_at
		FROM referral_events
		WHERE referral_id = $1 AND event_type = $2 AND debounce_key = $3
		  AND occurred_at >= $4
		ORDER BY occurred_at DESC
		LIMIT 1
	`
	row := s.db.QueryRowContext(ctx, query,
		uuid.UUID(referralID), string(eventType), debounceKey, since)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query recent event: %w", err)
	}
	return event, nil
}

// ListByReferrals returns all events for the given referrals at or after since.
func (s *PostgresEventStore) ListByReferrals(ctx context.Context, referralIDs []id.ReferralID, since time.Time) ([]models.Event, error) {
	if len(referralIDs) == 0 {
		return []models.Event{}, nil
	}

	placeholders := make([]string, len(referralIDs))
	args := make([]any, 0, len(referralIDs)+1)
	for i, rid := range referralIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, uuid.UUID(rid))
	}
	args = append(args, since)

	query := fmt.Sprintf(`
		SELECT id, referral_id, event_type, platform, user_agent,
		       ip_hash, debounce_key, occurred_at
		FROM referral_events
		WHERE referral_id IN (%s) AND occurred_at >= $%d
	`, strings.Join(placeholders, ", "), len(referralIDs)+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query referral events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan referral event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referral events: %w", err)
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		event      models.Event
		referralID uuid.UUID
		eventType  string
		platform   string
		userAgent  sql.NullString
		ipHash     sql.NullString
	)
	err := row.Scan(
		&event.ID,
		&referralID,
		&eventType,
		&platform,
		&userAgent,
		&ipHash,
		&event.DebounceKey,
		&event.OccurredAt,
	)
	if err != nil {
		return nil, err
	}
	event.ReferralID = id.ReferralID(referralID)
	event.Type = id.EventType(eventType)
	event.Platform = id.Platform(platform)
	event.UserAgent = userAgent.String
	event.IPHash = ipHash.String
	return &event, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
