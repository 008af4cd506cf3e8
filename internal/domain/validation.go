package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidOwnerName = errors.New("invalid owner name")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidPin       = errors.New("invalid pin")
)

// Validation constants
const (
	MaxOwnerNameLength = 255
	MinPin             = 0
	MaxPin             = 9999
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// ValidateOwnerName requires at least one token so a username can be derived.
func ValidateOwnerName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidOwnerName)
	}

	if len(name) > MaxOwnerNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidOwnerName, MaxOwnerNameLength)
	}

	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// ValidatePin accepts four-digit numeric pins.
func ValidatePin(pin int) error {
	if pin < MinPin || pin > MaxPin {
		return fmt.Errorf("%w: must be between %d and %d", ErrInvalidPin, MinPin, MaxPin)
	}
	return nil
}

// ValidateAmount requires a strictly positive amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// AmountFromFloat converts a float to a decimal, rejecting NaN and infinities.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, ErrInvalidAmount
	}
	return decimal.NewFromFloat(f), nil
}
