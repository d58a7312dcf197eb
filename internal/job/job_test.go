package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/JWax21/cleanbox-cron/internal/config"
	draftboxdomain "github.com/JWax21/cleanbox-cron/internal/draftbox/domain"
	"github.com/JWax21/cleanbox-cron/internal/period"
	reportdomain "github.com/JWax21/cleanbox-cron/internal/report/domain"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeSource struct {
	boxes     []draftboxdomain.DraftBox
	customers map[string]draftboxdomain.Customer
	fetchErr  error

	requestedIDs []string
}

func (f *fakeSource) DraftBoxesByPeriod(_ context.Context, _ period.Period) ([]draftboxdomain.DraftBox, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.boxes, nil
}

func (f *fakeSource) CustomersByID(_ context.Context, ids []string) (map[string]draftboxdomain.Customer, error) {
	f.requestedIDs = ids
	resolved := make(map[string]draftboxdomain.Customer, len(ids))
	for _, id := range ids {
		if c, ok := f.customers[id]; ok {
			resolved[id] = c
		}
	}
	return resolved, nil
}

type fakeSink struct {
	demand    []reportdomain.DemandRow
	frequency []reportdomain.FrequencyRow
	inserted  []reportdomain.InternalOrder
	upserted  []reportdomain.InternalOrder
	runs      []reportdomain.JobRun

	prunedDemandExcept    [][]string
	prunedFrequencyExcept [][]string

	upsertErr    error
	insertErrFor map[string]error
	recordRunErr error
}

func (f *fakeSink) Migrate(context.Context) error { return nil }

func (f *fakeSink) UpsertDemand(_ context.Context, rows []reportdomain.DemandRow) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.demand = append(f.demand, rows...)
	return nil
}

func (f *fakeSink) UpsertFrequency(_ context.Context, rows []reportdomain.FrequencyRow) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.frequency = append(f.frequency, rows...)
	return nil
}

func (f *fakeSink) PruneDemandExcept(_ context.Context, skus []string) (int64, error) {
	f.prunedDemandExcept = append(f.prunedDemandExcept, skus)
	return 0, nil
}

func (f *fakeSink) PruneFrequencyExcept(_ context.Context, skus []string) (int64, error) {
	f.prunedFrequencyExcept = append(f.prunedFrequencyExcept, skus)
	return 0, nil
}

func (f *fakeSink) InsertOrder(_ context.Context, row *reportdomain.InternalOrder) error {
	if err := f.insertErrFor[row.CustomerID]; err != nil {
		return err
	}
	f.inserted = append(f.inserted, *row)
	return nil
}

func (f *fakeSink) UpsertOrder(_ context.Context, row *reportdomain.InternalOrder) error {
	f.upserted = append(f.upserted, *row)
	return nil
}

func (f *fakeSink) RecordRun(_ context.Context, run *reportdomain.JobRun) error {
	if f.recordRunErr != nil {
		return f.recordRunErr
	}
	f.runs = append(f.runs, *run)
	return nil
}

func testParams(t *testing.T, source *fakeSource, sink *fakeSink, cfg config.Config) Params {
	t.Helper()
	return Params{
		Log:    zap.NewNop(),
		Source: source,
		Sink:   sink,
		Cfg:    cfg,
		Clock:  fakeClock{now: time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)},
	}
}

func draftBox(customerID string, skus ...string) draftboxdomain.DraftBox {
	lines := make([]draftboxdomain.SnackLine, 0, len(skus))
	for _, sku := range skus {
		lines = append(lines, draftboxdomain.SnackLine{SnackID: sku})
	}
	return draftboxdomain.DraftBox{CustomerID: customerID, Month: 625, Snacks: lines}
}

func TestDemandCountsEveryResolvableStatus(t *testing.T) {
	source := &fakeSource{
		boxes: []draftboxdomain.DraftBox{
			draftBox("c1", "sku-a", "sku-b"),
			draftBox("c2", "sku-a"),
			draftBox("ghost", "sku-a"),
		},
		customers: map[string]draftboxdomain.Customer{
			"c1": {CustomerID: "c1", OrderStatus: draftboxdomain.OrderStatusConfirmed, StripeStatus: "canceled"},
			"c2": {CustomerID: "c2", OrderStatus: "Pending", StripeStatus: draftboxdomain.StripeStatusActive},
		},
	}
	sink := &fakeSink{}

	j := NewDemand(testParams(t, source, sink, config.Config{DemandRetention: config.RetentionRetain}))
	if err := j.Run(context.Background(), 625); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sink.demand) != 2 {
		t.Fatalf("expected 2 demand rows, got %d", len(sink.demand))
	}
	// Status is a dimension here, not a filter: the canceled stripe
	// status on c1 does not shrink the denominator, only the
	// unresolvable ghost customer does.
	a := sink.demand[0]
	if a.SKU != "sku-a" || a.Confirmed != 1 || a.Pending != 1 || a.Projected != 2 {
		t.Fatalf("unexpected sku-a row: %+v", a)
	}
	if len(sink.prunedDemandExcept) != 0 {
		t.Fatalf("retain policy must not prune, got %v", sink.prunedDemandExcept)
	}
	if len(sink.runs) != 1 || sink.runs[0].Status != reportdomain.RunStatusSucceeded || sink.runs[0].Skipped != 1 {
		t.Fatalf("unexpected run record: %+v", sink.runs)
	}
}

func TestDemandPruneRetention(t *testing.T) {
	source := &fakeSource{
		boxes: []draftboxdomain.DraftBox{draftBox("c1", "sku-a")},
		customers: map[string]draftboxdomain.Customer{
			"c1": {CustomerID: "c1", OrderStatus: "Pending"},
		},
	}
	sink := &fakeSink{}

	j := NewDemand(testParams(t, source, sink, config.Config{DemandRetention: config.RetentionPrune}))
	if err := j.Run(context.Background(), 625); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.prunedDemandExcept) != 1 || len(sink.prunedDemandExcept[0]) != 1 || sink.prunedDemandExcept[0][0] != "sku-a" {
		t.Fatalf("expected prune except [sku-a], got %v", sink.prunedDemandExcept)
	}
}

func TestDemandFetchErrorIsFatal(t *testing.T) {
	fetchErr := errors.New("connection reset")
	source := &fakeSource{fetchErr: fetchErr}
	sink := &fakeSink{}

	j := NewDemand(testParams(t, source, sink, config.Config{DemandRetention: config.RetentionRetain}))
	if err := j.Run(context.Background(), 625); !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if len(sink.runs) != 0 {
		t.Fatalf("no run record expected when nothing was aggregated, got %+v", sink.runs)
	}
}

func TestDemandUpsertFailureIsFatal(t *testing.T) {
	upsertErr := errors.New("batch rejected")
	source := &fakeSource{
		boxes: []draftboxdomain.DraftBox{draftBox("c1", "sku-a")},
		customers: map[string]draftboxdomain.Customer{
			"c1": {CustomerID: "c1", OrderStatus: "Pending"},
		},
	}
	sink := &fakeSink{upsertErr: upsertErr}

	j := NewDemand(testParams(t, source, sink, config.Config{DemandRetention: config.RetentionRetain}))
	if err := j.Run(context.Background(), 625); !errors.Is(err, upsertErr) {
		t.Fatalf("expected upsert error, got %v", err)
	}
	if len(sink.runs) != 1 || sink.runs[0].Status != reportdomain.RunStatusFailed {
		t.Fatalf("expected failed run record, got %+v", sink.runs)
	}
}

func TestFrequencyFiltersInactiveAtJoinTime(t *testing.T) {
	source := &fakeSource{
		boxes: []draftboxdomain.DraftBox{
			draftBox("c1", "sku-a", "sku-a"),
			draftBox("c2", "sku-a"), // trialing: excluded from this job's denominator
			draftBox("c3", "sku-b"), // canceled
		},
		customers: map[string]draftboxdomain.Customer{
			"c1": {CustomerID: "c1", StripeStatus: draftboxdomain.StripeStatusActive},
			"c2": {CustomerID: "c2", StripeStatus: draftboxdomain.StripeStatusTrialing},
			"c3": {CustomerID: "c3", StripeStatus: "canceled"},
		},
	}
	sink := &fakeSink{}

	j := NewFrequency(testParams(t, source, sink, config.Config{DemandRetention: config.RetentionRetain}))
	if err := j.Run(context.Background(), 625); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sink.frequency) != 1 {
		t.Fatalf("expected only active customers' SKUs, got %+v", sink.frequency)
	}
	if sink.frequency[0].SKU != "sku-a" || sink.frequency[0].Count != 2 {
		t.Fatalf("unexpected frequency row: %+v", sink.frequency[0])
	}
	if sink.runs[0].Skipped != 2 {
		t.Fatalf("expected 2 skipped boxes, got %d", sink.runs[0].Skipped)
	}
}

func TestOrdersContinuesOnRowFailure(t *testing.T) {
	source := &fakeSource{
		boxes: []draftboxdomain.DraftBox{
			draftBox("c1", "sku-a"),
			draftBox("c2", "sku-b"),
		},
		customers: map[string]draftboxdomain.Customer{
			"c1": {CustomerID: "c1", StripeStatus: draftboxdomain.StripeStatusActive, FirstName: "Ada", LastName: "Lovelace"},
			"c2": {CustomerID: "c2", StripeStatus: draftboxdomain.StripeStatusTrialing, FirstName: "Grace", LastName: "Hopper"},
		},
	}
	sink := &fakeSink{insertErrFor: map[string]error{"c1": errors.New("row rejected")}}

	cfg := config.Config{OrderWriteMode: config.OrderWriteInsert}
	j := NewOrders(testParams(t, source, sink, cfg))
	if err := j.Run(context.Background(), 625); err != nil {
		t.Fatalf("per-row failures must not fail the run, got %v", err)
	}

	if len(sink.inserted) != 1 || sink.inserted[0].CustomerID != "c2" {
		t.Fatalf("expected c2 written despite c1 failure, got %+v", sink.inserted)
	}
	if len(sink.runs) != 1 || sink.runs[0].Status != reportdomain.RunStatusPartial {
		t.Fatalf("expected partial run record, got %+v", sink.runs)
	}
	if sink.runs[0].RowsWritten != 1 {
		t.Fatalf("expected 1 written row, got %d", sink.runs[0].RowsWritten)
	}
}

func TestOrdersUpsertWriteMode(t *testing.T) {
	source := &fakeSource{
		boxes: []draftboxdomain.DraftBox{draftBox("c1", "sku-a")},
		customers: map[string]draftboxdomain.Customer{
			"c1": {CustomerID: "c1", StripeStatus: draftboxdomain.StripeStatusActive},
		},
	}
	sink := &fakeSink{}

	cfg := config.Config{OrderWriteMode: config.OrderWriteUpsert}
	j := NewOrders(testParams(t, source, sink, cfg))
	if err := j.Run(context.Background(), 625); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.upserted) != 1 || len(sink.inserted) != 0 {
		t.Fatalf("expected upsert path, got inserted=%d upserted=%d", len(sink.inserted), len(sink.upserted))
	}
}

func TestFetchJoinInputDeduplicatesCustomerIDs(t *testing.T) {
	source := &fakeSource{
		boxes: []draftboxdomain.DraftBox{
			draftBox("c1", "sku-a"),
			draftBox("c1", "sku-b"),
			draftBox("", "sku-c"),
		},
		customers: map[string]draftboxdomain.Customer{
			"c1": {CustomerID: "c1"},
		},
	}

	_, customers, err := fetchJoinInput(context.Background(), source, 625)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(source.requestedIDs) != 1 || source.requestedIDs[0] != "c1" {
		t.Fatalf("expected deduplicated non-empty ids, got %v", source.requestedIDs)
	}
	if len(customers) != 1 {
		t.Fatalf("expected 1 resolved customer, got %d", len(customers))
	}
}

func TestRegistryLookup(t *testing.T) {
	source := &fakeSource{}
	sink := &fakeSink{}
	p := testParams(t, source, sink, config.Config{})

	registry := NewRegistry(NewDemand(p), NewFrequency(p), NewOrders(p))

	for _, name := range []string{NameDemand, NameFrequency, NameOrders, " Demand "} {
		if _, err := registry.Lookup(name); err != nil {
			t.Fatalf("lookup %q: %v", name, err)
		}
	}
	if _, err := registry.Lookup("nope"); err == nil {
		t.Fatalf("expected error for unknown job")
	}
}
