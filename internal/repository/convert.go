package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if ts.Valid {
		t := ts.Time
		return &t
	}
	return nil
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if t.Valid {
		s := t.String
		return &s
	}
	return nil
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// Numerics travel as text so no codec is needed for decimal.Decimal.
func pgTextToDecimalPtr(t pgtype.Text) *decimal.Decimal {
	if !t.Valid {
		return nil
	}
	d, err := decimal.NewFromString(t.String)
	if err != nil {
		return nil
	}
	return &d
}

func decimalPtrToPgText(d *decimal.Decimal) pgtype.Text {
	if d == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: d.String(), Valid: true}
}
