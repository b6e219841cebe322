package handler

import (
	"errors"
	"testing"
	"time"

	"github.com/opsease/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "5000.00", money(decimal.NewFromInt(5000)))
	assert.Equal(t, "-600.50", money(decimal.RequireFromString("-600.5")))
	assert.Equal(t, "0.00", money(decimal.Zero))
}

func TestParseMoney(t *testing.T) {
	d, err := parseMoney(" 1250.75 ")
	require.NoError(t, err)
	assert.Equal(t, "1250.75", d.String())

	d, err = parseMoney("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = parseMoney("12,50")
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)

	p, err := parseMoneyPtr(nil)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDates(t *testing.T) {
	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-10", formatDate(day))
	assert.Nil(t, formatDatePtr(nil))
	assert.Equal(t, "2024-01-10", *formatDatePtr(&day))

	parsed, err := parseDatePtr(strPtr("2024-01-10"))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(day))

	parsed, err = parseDatePtr(strPtr(" "))
	require.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = parseDatePtr(strPtr("10-01-2024"))
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
