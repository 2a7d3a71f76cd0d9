package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// StoreMetrics records point-of-sale and import activity.
type StoreMetrics struct {
	salesCreated   *Counter
	salesRejected  *Counter
	salesInvoiced  *Counter
	unitsSold      *Counter
	revenueCents   *Counter
	importRows     *Counter
	importRowsFail *Counter
	importRuns     *Counter
}

// NewStoreMetrics registers the store instruments on meter.
func NewStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &StoreMetrics{}
	instruments := []struct {
		dst        **Counter
		name, desc string
		unit       string
	}{
		{&m.salesCreated, "store_sales_created_total", "Sales recorded", "{sales}"},
		{&m.salesRejected, "store_sales_rejected_total", "Sales rejected before commit", "{sales}"},
		{&m.salesInvoiced, "store_sales_invoiced_total", "Sales moved to invoiced", "{sales}"},
		{&m.unitsSold, "store_units_sold_total", "Product units sold", "{units}"},
		{&m.revenueCents, "store_revenue_cents_total", "Sales revenue in cents", "{cents}"},
		{&m.importRows, "store_import_rows_total", "Rows processed by product imports", "{rows}"},
		{&m.importRowsFail, "store_import_rows_failed_total", "Rows rejected by product imports", "{rows}"},
		{&m.importRuns, "store_import_runs_total", "Product import runs", "{runs}"},
	}
	for _, s := range instruments {
		c, err := NewCounter(meter, s.name, s.desc, s.unit)
		if err != nil {
			return nil, err
		}
		*s.dst = c
	}
	return m, nil
}

// RecordSaleCreated counts a committed sale.
// All Record methods are no-ops on a nil *StoreMetrics.
func (m *StoreMetrics) RecordSaleCreated(ctx context.Context, units int, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.salesCreated.Inc(ctx)
	m.unitsSold.Add(ctx, int64(units))
	m.revenueCents.Add(ctx, total.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// RecordSaleRejected counts a sale that failed, labelled by error code
func (m *StoreMetrics) RecordSaleRejected(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.salesRejected.Inc(ctx, AttrErrorCode.String(code))
}

// RecordSaleInvoiced counts a pending sale that became invoiced
func (m *StoreMetrics) RecordSaleInvoiced(ctx context.Context) {
	if m == nil {
		return
	}
	m.salesInvoiced.Inc(ctx)
}

// RecordImport counts one import run and its rows
func (m *StoreMetrics) RecordImport(ctx context.Context, source, status string, processed, failed int) {
	if m == nil {
		return
	}
	m.importRuns.Inc(ctx, AttrImportSource.String(source), AttrImportStatus.String(status))
	m.importRows.Add(ctx, int64(processed), AttrImportSource.String(source))
	m.importRowsFail.Add(ctx, int64(failed), AttrImportSource.String(source))
}
