package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxSetting is the single configured tax rate. Rate is a fraction
// (0.10 for 10%).
type TaxSetting struct {
	Enabled bool            `json:"enabled"`
	Rate    decimal.Decimal `json:"rate"`
}

// Store reads the persisted tax setting.
type Store interface {
	GetTaxSetting(ctx context.Context) (TaxSetting, error)
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetTaxSetting reads the single tax settings row. A missing row means tax
// was never configured and yields a disabled zero-rate setting; the engine
// must never charge tax that was not explicitly turned on.
func (s *PostgresStore) GetTaxSetting(ctx context.Context) (TaxSetting, error) {
	var setting TaxSetting
	err := s.db.QueryRowContext(ctx,
		`SELECT tax_enabled, tax_rate FROM store_settings LIMIT 1`,
	).Scan(&setting.Enabled, &setting.Rate)
	if errors.Is(err, sql.ErrNoRows) {
		return TaxSetting{}, nil
	}
	if err != nil {
		return TaxSetting{}, fmt.Errorf("query tax setting: %w", err)
	}
	return setting, nil
}
