package referral

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"xainik/internal/referral/models"
	id "xainik/pkg/domain"
	"xainik/pkg/platform/sentinel"
)

// uniqueViolation is the postgres error code for unique constraint breaks.
const uniqueViolation = "23505"

// PostgresReferralStore persists the referral read model.
type PostgresReferralStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresReferralStore {
	return &PostgresReferralStore{db: db}
}

func (s *PostgresReferralStore) Create(ctx context.Context, ref *models.Referral) error {
	const query = `
		INSERT INTO referrals (id, user_id, pitch_id, share_slug, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(ref.ID),
		uuid.UUID(ref.UserID),
		uuid.UUID(ref.PitchID),
		ref.ShareSlug,
		ref.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert referral: %w", err)
	}
	return nil
}

func (s *PostgresReferralStore) ListByUser(ctx context.Context, userID id.UserID, since time.Time) ([]models.Referral, error) {
	const query = `
		SELECT id, user_id, pitch_id, share_slug, created_at
		FROM referrals
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID), since)
	if err != nil {
		return nil, fmt.Errorf("query referrals: %w", err)
	}
	defer rows.Close()

	referrals := make([]models.Referral, 0)
	for rows.Next() {
		var (
			ref     models.Referral
			refID   uuid.UUID
			usrID   uuid.UUID
			pitchID uuid.UUID
		)
		if err := rows.Scan(&refID, &usrID, &pitchID, &ref.ShareSlug, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan referral: %w", err)
		}
		ref.ID = id.ReferralID(refID)
		ref.UserID = id.UserID(usrID)
		ref.PitchID = id.PitchID(pitchID)
		referrals = append(referrals, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate referrals: %w", err)
	}
	return referrals, nil
}
