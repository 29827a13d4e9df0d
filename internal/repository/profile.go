package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/surveypay/internal/domain"
)

// ProfileRepository is the PostgreSQL user-profile store.
type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const getProfile = `
SELECT user_id, current_plan, plan_updated_at, last_payment_amount::text,
       last_payment_transaction_id, created_at, updated_at
FROM user_profiles
WHERE user_id = $1`

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var (
		p         domain.Profile
		updatedAt pgtype.Timestamptz
		amount    pgtype.Text
		txID      pgtype.Text
		createdTs pgtype.Timestamptz
		updatedTs pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, getProfile, userID).Scan(
		&p.UserID, &p.CurrentPlan, &updatedAt, &amount, &txID, &createdTs, &updatedTs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	p.PlanUpdatedAt = pgTimestamptzToTimePtr(updatedAt)
	p.LastPaymentAmount = pgTextToDecimalPtr(amount)
	p.LastPaymentTransactionID = pgTextToStringPtr(txID)
	p.CreatedAt = pgTimestamptzToTime(createdTs)
	p.UpdatedAt = pgTimestamptzToTime(updatedTs)
	return &p, nil
}

const upsertPlan = `
INSERT INTO user_profiles (user_id, current_plan, plan_updated_at, last_payment_amount, last_payment_transaction_id)
VALUES ($1, $2, $3, $4::text::numeric, $5)
ON CONFLICT (user_id) DO UPDATE SET
    current_plan = EXCLUDED.current_plan,
    plan_updated_at = EXCLUDED.plan_updated_at,
    last_payment_amount = COALESCE(EXCLUDED.last_payment_amount, user_profiles.last_payment_amount),
    last_payment_transaction_id = COALESCE(EXCLUDED.last_payment_transaction_id, user_profiles.last_payment_transaction_id),
    updated_at = NOW()`

// UpdatePlan upserts the plan of record for userID.
func (r *ProfileRepository) UpdatePlan(ctx context.Context, userID string, upd domain.PlanUpdate) error {
	_, err := r.db.Exec(ctx, upsertPlan,
		userID,
		upd.CurrentPlan,
		timeToPgTimestamptz(upd.PlanUpdatedAt),
		decimalPtrToPgText(upd.LastPaymentAmount),
		stringPtrToPgText(upd.LastPaymentTransactionID),
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

const ensureProfile = `
INSERT INTO user_profiles (user_id, current_plan)
VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING`

// EnsureProfile creates a profile on the default plan if none exists and
// reports whether it did.
func (r *ProfileRepository) EnsureProfile(ctx context.Context, userID, defaultPlan string) (bool, error) {
	tag, err := r.db.Exec(ctx, ensureProfile, userID, defaultPlan)
	if err != nil {
		return false, fmt.Errorf("ensure profile: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const countByPlan = `
SELECT current_plan, COUNT(*) FROM user_profiles GROUP BY current_plan ORDER BY current_plan`

// CountByPlan returns how many profiles sit on each plan.
func (r *ProfileRepository) CountByPlan(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, countByPlan)
	if err != nil {
		return nil, fmt.Errorf("count by plan: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var plan string
		var n int64
		if err := rows.Scan(&plan, &n); err != nil {
			return nil, fmt.Errorf("scan plan count: %w", err)
		}
		out[plan] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count by plan: %w", err)
	}
	return out, nil
}
