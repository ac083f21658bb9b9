// Package postgres implements the repository contracts on PostgreSQL via
// pgx. Monetary and quantity columns are NUMERIC and travel as exact
// decimal strings, never as binary floats.
package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	// String round trip keeps the exact scale.
	_ = n.Scan(d.String())
	return n
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Decimal{}, fmt.Errorf("null numeric")
	}

	v, err := n.Value()
	if err != nil {
		return decimal.Decimal{}, err
	}

	s, ok := v.(string)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unexpected numeric driver value %T", v)
	}

	return decimal.NewFromString(s)
}

func numericPtrToDecimalPtr(n pgtype.Numeric) (*decimal.Decimal, error) {
	if !n.Valid {
		return nil, nil
	}

	d, err := numericToDecimal(n)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func decimalPtrToNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}

	return decimalToNumeric(*d)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
