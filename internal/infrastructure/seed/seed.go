// Package seed loads the accounts the registry starts with.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/usecase"
)

//go:embed default.json
var defaultSeed []byte

// Record is one seeded account. Movements and MovementsDates are parallel
// arrays and must have the same length.
type Record struct {
	Owner          string            `json:"owner"`
	Movements      []decimal.Decimal `json:"movements"`
	MovementsDates []time.Time       `json:"movements_dates"`
	InterestRate   decimal.Decimal   `json:"interest_rate"`
	Pin            int               `json:"pin"`
	Currency       string            `json:"currency"`
	Locale         string            `json:"locale"`
}

// PinHasher turns a plain pin into the hash stored on the account.
type PinHasher interface {
	Hash(pin int) ([]byte, error)
}

// Default returns the built-in seed.
func Default() ([]Record, error) {
	return Parse(bytes.NewReader(defaultSeed))
}

// LoadFile reads records from a JSON file. An empty path yields the
// built-in seed.
func LoadFile(path string) ([]Record, error) {
	if path == "" {
		return Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes and validates records.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	for i, rec := range records {
		if err := rec.validate(); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
	}
	return records, nil
}

func (r Record) validate() error {
	if err := domain.ValidateOwnerName(r.Owner); err != nil {
		return err
	}
	if err := domain.ValidateCurrency(r.Currency); err != nil {
		return err
	}
	if err := domain.ValidatePin(r.Pin); err != nil {
		return err
	}
	if len(r.Movements) != len(r.MovementsDates) {
		return fmt.Errorf("%w: %d movements, %d dates", domain.ErrSeedMismatch, len(r.Movements), len(r.MovementsDates))
	}
	return nil
}

// Apply builds an account per record and adds it to the registry in order.
func Apply(
	ctx context.Context,
	repo usecase.AccountRepository,
	hasher PinHasher,
	idGen usecase.IDGenerator,
	records []Record,
) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(records))

	for _, rec := range records {
		hash, err := hasher.Hash(rec.Pin)
		if err != nil {
			return nil, fmt.Errorf("hash pin for %s: %w", rec.Owner, err)
		}

		account := domain.NewAccount(rec.Owner, hash, rec.InterestRate, rec.Currency, rec.Locale)
		for i, amount := range rec.Movements {
			if _, err := account.Append(idGen.Generate(), amount, rec.MovementsDates[i].UTC()); err != nil {
				return nil, fmt.Errorf("seed movement %d for %s: %w", i, rec.Owner, err)
			}
		}

		if err := repo.Add(ctx, account); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}
