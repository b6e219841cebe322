package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics records ledger posting activity.
type LedgerMetrics struct {
	entriesPosted   *Counter
	amountPosted    *Histogram
	invoiceTriggers *Counter
	balanceDrift    *Gauge
	logger          *zap.Logger
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter, logger *zap.Logger) (*LedgerMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entriesPosted, err := NewCounter(meter,
		"ledger_entries_posted_total",
		"Number of ledger entries committed",
		"{entry}",
	)
	if err != nil {
		return nil, err
	}

	amountPosted, err := NewHistogram(meter, HistogramOpts{
		Name:        "ledger_entry_amount",
		Description: "Amounts of committed ledger entries",
		Unit:        "{currency}",
		Boundaries:  []float64{10, 100, 500, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
	})
	if err != nil {
		return nil, err
	}

	invoiceTriggers, err := NewCounter(meter,
		"ledger_invoice_triggers_total",
		"Invoice events seen by the ledger, by outcome",
		"{event}",
	)
	if err != nil {
		return nil, err
	}

	balanceDrift, err := NewGauge(meter,
		"ledger_balance_drift_entries",
		"Entries whose stored balance differs from the derived one at the last check",
		"{entry}",
	)
	if err != nil {
		return nil, err
	}

	return &LedgerMetrics{
		entriesPosted:   entriesPosted,
		amountPosted:    amountPosted,
		invoiceTriggers: invoiceTriggers,
		balanceDrift:    balanceDrift,
		logger:          logger,
	}, nil
}

// RecordEntryPosted counts one committed entry and its amount.
func (m *LedgerMetrics) RecordEntryPosted(ctx context.Context, partyType, entryType, sourceType string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrPartyType.String(partyType),
		AttrEntryType.String(entryType),
		AttrSourceType.String(sourceType),
	}
	m.entriesPosted.Inc(ctx, attrs...)
	m.amountPosted.Record(ctx, amount.InexactFloat64(), attrs...)
}

// RecordInvoiceTrigger counts an invoice event, split by whether it produced
// an entry or was skipped as already posted.
func (m *LedgerMetrics) RecordInvoiceTrigger(ctx context.Context, sourceType string, posted bool) {
	outcome := "posted"
	if !posted {
		outcome = "skipped"
	}
	m.invoiceTriggers.Inc(ctx,
		AttrSourceType.String(sourceType),
		AttrOutcome.String(outcome),
	)
}

// RecordDrift records how many drifted entries the last verification found.
func (m *LedgerMetrics) RecordDrift(ctx context.Context, count int64) {
	m.balanceDrift.Record(ctx, count)
	if count > 0 {
		m.logger.Warn("ledger balance drift detected", zap.Int64("entries", count))
	}
}
