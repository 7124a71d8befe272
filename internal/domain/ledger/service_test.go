package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

// fakeTxManager runs the callback directly; transactional semantics are
// exercised against a real database, not here.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLedgerRepo struct {
	entries []Entry
	locked  [][]id.ID
}

func (f *fakeLedgerRepo) Append(ctx context.Context, entries []Entry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeLedgerRepo) Balance(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	for _, e := range f.entries {
		if e.ProductID == productID {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (f *fakeLedgerRepo) BalanceBatch(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	result := make(map[id.ID]types.Quantity)
	for _, e := range f.entries {
		for _, pid := range productIDs {
			if e.ProductID == pid {
				result[pid] += e.Delta
			}
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) EntriesByDocument(ctx context.Context, documentID id.ID) ([]Entry, error) {
	var out []Entry
	for _, e := range f.entries {
		if e.DocumentID != nil && *e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) History(ctx context.Context, filter HistoryFilter) ([]Entry, error) {
	var out []Entry
	for _, e := range f.entries {
		if filter.ProductID != nil && e.ProductID != *filter.ProductID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeLedgerRepo) LockProducts(ctx context.Context, productIDs []id.ID) error {
	f.locked = append(f.locked, append([]id.ID(nil), productIDs...))
	return nil
}

func qty(s string) types.Quantity {
	q, err := types.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func seedEntry(productID id.ID, entryType EntryType, delta types.Quantity) Entry {
	return NewEntry(productID, entryType, delta, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
}

func newTestService() (*Service, *fakeLedgerRepo) {
	repo := &fakeLedgerRepo{}
	return NewService(repo, fakeTxManager{}), repo
}

func TestService_CurrentStock_SumsDeltas(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	pid := id.New()

	repo.entries = []Entry{
		seedEntry(pid, TypePurchase, qty("50")),
		seedEntry(pid, TypeSale, qty("-20")),
		seedEntry(pid, TypeSaleReturn, qty("5")),
	}

	stock, err := svc.CurrentStock(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, qty("35"), stock)
}

func TestService_CurrentStock_FloorsNegativeAtZero(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	pid := id.New()

	// Legacy data can leave a raw negative sum.
	repo.entries = []Entry{seedEntry(pid, TypeSale, qty("-10"))}

	stock, err := svc.CurrentStock(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), stock)
}

func TestService_CurrentStockBatch_MissingProductsMapToZero(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	known := id.New()
	unknown := id.New()

	repo.entries = []Entry{seedEntry(known, TypePurchase, qty("3"))}

	stocks, err := svc.CurrentStockBatch(ctx, []id.ID{known, unknown})
	require.NoError(t, err)
	assert.Equal(t, qty("3"), stocks[known])
	assert.Equal(t, types.Quantity(0), stocks[unknown])
	assert.Len(t, stocks, 2)
}

func TestService_Append_RejectsWrongSign(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	bad := seedEntry(id.New(), TypeSale, qty("5")) // sale must be negative
	err := svc.Append(ctx, []Entry{bad})

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.entries)
}

func TestService_Append_RejectsZeroDelta(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	bad := seedEntry(id.New(), TypeAdjustment, 0)
	err := svc.Append(ctx, []Entry{bad})

	require.Error(t, err)
	assert.Empty(t, repo.entries)
}

func TestService_ValidateStockBatch_SumsSameProductLines(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	pid := id.New()

	repo.entries = []Entry{seedEntry(pid, TypePurchase, qty("10"))}

	// Two lines of 6 for the same product need 12 in total; splitting
	// must not sneak past the check.
	checks, err := svc.ValidateStockBatch(ctx, []Requirement{
		{ProductID: pid, Quantity: qty("6")},
		{ProductID: pid, Quantity: qty("6")},
	})
	require.NoError(t, err)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].OK)
	assert.Equal(t, qty("10"), checks[0].Available)
	assert.Equal(t, qty("12"), checks[0].Required)
}

func TestService_ValidateStock_OK(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	pid := id.New()

	repo.entries = []Entry{seedEntry(pid, TypePurchase, qty("10"))}

	check, err := svc.ValidateStock(ctx, pid, qty("10"))
	require.NoError(t, err)
	assert.True(t, check.OK)
}

func TestService_LockProducts_DeduplicatesAndSorts(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	a := id.MustParse("00000000-0000-0000-0000-00000000000a")
	b := id.MustParse("00000000-0000-0000-0000-00000000000b")

	require.NoError(t, svc.LockProducts(ctx, []id.ID{b, a, b}))

	require.Len(t, repo.locked, 1)
	assert.Equal(t, []id.ID{a, b}, repo.locked[0])
}

func TestService_Adjust_AppendsEntry(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	pid := id.New()

	repo.entries = []Entry{seedEntry(pid, TypePurchase, qty("10"))}

	entry, err := svc.Adjust(ctx, pid, qty("-4"), time.Time{}, "damaged goods")
	require.NoError(t, err)

	assert.Equal(t, TypeAdjustment, entry.Type)
	assert.Equal(t, qty("-4"), entry.Delta)
	assert.Equal(t, "damaged goods", entry.Notes)
	require.Len(t, repo.locked, 1)

	stock, err := svc.CurrentStock(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, qty("6"), stock)
}

func TestService_Adjust_RejectsNegativeResult(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	pid := id.New()

	repo.entries = []Entry{seedEntry(pid, TypePurchase, qty("3"))}
	before := len(repo.entries)

	_, err := svc.Adjust(ctx, pid, qty("-5"), time.Time{}, "")

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Len(t, repo.entries, before)
}

func TestService_Adjust_RejectsZeroDelta(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Adjust(context.Background(), id.New(), 0, time.Time{}, "")

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestEntry_Validate(t *testing.T) {
	ctx := context.Background()
	pid := id.New()
	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		entry   Entry
		wantErr bool
	}{
		{name: "purchase positive", entry: NewEntry(pid, TypePurchase, qty("5"), date)},
		{name: "sale negative", entry: NewEntry(pid, TypeSale, qty("-5"), date)},
		{name: "purchase return negative", entry: NewEntry(pid, TypePurchaseReturn, qty("-5"), date)},
		{name: "sale return positive", entry: NewEntry(pid, TypeSaleReturn, qty("5"), date)},
		{name: "initialization positive", entry: NewEntry(pid, TypeInitialization, qty("5"), date)},
		{name: "adjustment either sign", entry: NewEntry(pid, TypeAdjustment, qty("-5"), date)},
		{name: "purchase negative", entry: NewEntry(pid, TypePurchase, qty("-5"), date), wantErr: true},
		{name: "sale positive", entry: NewEntry(pid, TypeSale, qty("5"), date), wantErr: true},
		{name: "initialization negative", entry: NewEntry(pid, TypeInitialization, qty("-5"), date), wantErr: true},
		{name: "zero delta", entry: NewEntry(pid, TypeAdjustment, 0, date), wantErr: true},
		{name: "nil product", entry: NewEntry(id.Nil(), TypePurchase, qty("5"), date), wantErr: true},
		{name: "unknown type", entry: NewEntry(pid, EntryType("bogus"), qty("5"), date), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
