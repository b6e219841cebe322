package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opsease/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() EntryInput {
	return EntryInput{
		UserID:      "user-1",
		PartyName:   "Acme Garments",
		PartyType:   PartyTypeBuyer,
		EntryType:   EntryTypeDebit,
		Amount:      decimal.RequireFromString("1000.00"),
		Description: "Opening balance",
		EntryDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestPartyType(t *testing.T) {
	t.Run("IsValid returns true for valid types", func(t *testing.T) {
		assert.True(t, PartyTypeBuyer.IsValid())
		assert.True(t, PartyTypeSupplier.IsValid())
	})

	t.Run("IsValid returns false for invalid type", func(t *testing.T) {
		assert.False(t, PartyType("vendor").IsValid())
		assert.False(t, PartyType("").IsValid())
	})
}

func TestEntryType(t *testing.T) {
	assert.True(t, EntryTypeDebit.IsValid())
	assert.True(t, EntryTypeCredit.IsValid())
	assert.False(t, EntryType("DEBIT").IsValid())

	assert.Equal(t, EntryTypeCredit, EntryTypeDebit.Opposite())
	assert.Equal(t, EntryTypeDebit, EntryTypeCredit.Opposite())
}

func TestContribution(t *testing.T) {
	amount := decimal.NewFromInt(250)

	tests := []struct {
		name      string
		partyType PartyType
		entryType EntryType
		expected  decimal.Decimal
	}{
		{"buyer debit increases receivable", PartyTypeBuyer, EntryTypeDebit, decimal.NewFromInt(250)},
		{"buyer credit reduces receivable", PartyTypeBuyer, EntryTypeCredit, decimal.NewFromInt(-250)},
		{"supplier debit reduces payable", PartyTypeSupplier, EntryTypeDebit, decimal.NewFromInt(-250)},
		{"supplier credit increases payable", PartyTypeSupplier, EntryTypeCredit, decimal.NewFromInt(250)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Contribution(tt.partyType, tt.entryType, amount)
			assert.True(t, tt.expected.Equal(got), "expected %s, got %s", tt.expected, got)
		})
	}
}

func TestNewLedgerEntry(t *testing.T) {
	t.Run("creates entry with fresh id and zero balance", func(t *testing.T) {
		input := validInput()
		input.PartyName = "  Acme Garments  "
		input.EntryDate = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

		entry, err := NewLedgerEntry(input)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.Equal(t, "Acme Garments", entry.PartyName)
		assert.True(t, entry.Balance.IsZero())
		assert.Equal(t, SourceTypeManual, entry.SourceType)
		assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), entry.EntryDate)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*EntryInput)
			code   string
		}{
			{"missing user", func(in *EntryInput) { in.UserID = "" }, "INVALID_USER"},
			{"blank party name", func(in *EntryInput) { in.PartyName = "   " }, "INVALID_PARTY_NAME"},
			{"unknown party type", func(in *EntryInput) { in.PartyType = "agent" }, "INVALID_PARTY_TYPE"},
			{"missing entry type", func(in *EntryInput) { in.EntryType = "" }, "INVALID_ENTRY_TYPE"},
			{"zero amount", func(in *EntryInput) { in.Amount = decimal.Zero }, "INVALID_AMOUNT"},
			{"negative amount", func(in *EntryInput) { in.Amount = decimal.NewFromInt(-5) }, "INVALID_AMOUNT"},
			{"sub-cent amount", func(in *EntryInput) { in.Amount = decimal.RequireFromString("0.004") }, "INVALID_AMOUNT"},
			{"missing date", func(in *EntryInput) { in.EntryDate = time.Time{} }, "INVALID_ENTRY_DATE"},
			{"blank description", func(in *EntryInput) { in.Description = "" }, "INVALID_DESCRIPTION"},
			{"generated entry without source", func(in *EntryInput) { in.SourceType = SourceTypeInvoiceIssued }, "INVALID_SOURCE"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				input := validInput()
				tt.mutate(&input)

				entry, err := NewLedgerEntry(input)
				assert.Nil(t, entry)
				var domainErr *shared.DomainError
				require.True(t, errors.As(err, &domainErr))
				assert.Equal(t, tt.code, domainErr.Code)
			})
		}
	})

	t.Run("accepts trailing zeros past two places", func(t *testing.T) {
		input := validInput()
		input.Amount = decimal.RequireFromString("12.5000")

		entry, err := NewLedgerEntry(input)
		require.NoError(t, err)
		assert.Equal(t, "12.50", entry.Amount.StringFixed(2))
	})

	t.Run("accepts invoice source with id", func(t *testing.T) {
		input := validInput()
		sourceID := uuid.New()
		input.SourceType = SourceTypeInvoiceIssued
		input.SourceID = &sourceID
		input.Reference = "SI00000001"

		entry, err := NewLedgerEntry(input)
		require.NoError(t, err)
		assert.Equal(t, SourceTypeInvoiceIssued, entry.SourceType)
		assert.Equal(t, sourceID, *entry.SourceID)
		assert.Equal(t, "SI00000001", entry.Reference)
	})
}

func TestLedgerEntry_SignedAmount(t *testing.T) {
	entry, err := NewLedgerEntry(validInput())
	require.NoError(t, err)
	assert.True(t, entry.SignedAmount().Equal(decimal.NewFromInt(1000)))
	assert.True(t, entry.IsDebit())
	assert.False(t, entry.IsCredit())
}
