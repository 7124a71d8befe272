package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/domain/ledger"
)

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLedgerRepo struct {
	entries []ledger.Entry
}

func (f *memLedgerRepo) Append(ctx context.Context, entries []ledger.Entry) error {
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *memLedgerRepo) Balance(ctx context.Context, productID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	for _, e := range f.entries {
		if e.ProductID == productID {
			sum += e.Delta
		}
	}
	return sum, nil
}

func (f *memLedgerRepo) BalanceBatch(ctx context.Context, productIDs []id.ID) (map[id.ID]types.Quantity, error) {
	result := make(map[id.ID]types.Quantity)
	for _, pid := range productIDs {
		b, _ := f.Balance(ctx, pid)
		if b != 0 {
			result[pid] = b
		}
	}
	return result, nil
}

func (f *memLedgerRepo) EntriesByDocument(ctx context.Context, documentID id.ID) ([]ledger.Entry, error) {
	var out []ledger.Entry
	for _, e := range f.entries {
		if e.DocumentID != nil && *e.DocumentID == documentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *memLedgerRepo) History(ctx context.Context, filter ledger.HistoryFilter) ([]ledger.Entry, error) {
	return f.entries, nil
}

func (f *memLedgerRepo) LockProducts(ctx context.Context, productIDs []id.ID) error {
	return nil
}

type memProductRepo struct {
	products map[id.ID]*product.Product
}

func (f *memProductRepo) Create(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *memProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func (f *memProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	for _, p := range f.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (f *memProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product)
	for _, pid := range productIDs {
		if p, ok := f.products[pid]; ok {
			result[pid] = p
		}
	}
	return result, nil
}

func (f *memProductRepo) Update(ctx context.Context, p *product.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *memProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error {
	if p, ok := f.products[productID]; ok {
		p.DeletionMark = marked
	}
	return nil
}

func (f *memProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return domain.ListResult[*product.Product]{}, nil
}

func (f *memProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := f.GetByCode(ctx, code)
	return err == nil, nil
}

func (f *memProductRepo) IsReferenced(ctx context.Context, productID id.ID) (bool, error) {
	return false, nil
}

type memPurchaseRepo struct {
	docs  map[id.ID]*Purchase
	lines map[id.ID][]Line
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{
		docs:  make(map[id.ID]*Purchase),
		lines: make(map[id.ID][]Line),
	}
}

func (f *memPurchaseRepo) Create(ctx context.Context, doc *Purchase) error {
	stored := *doc
	f.docs[doc.ID] = &stored
	return nil
}

func (f *memPurchaseRepo) GetByID(ctx context.Context, docID id.ID) (*Purchase, error) {
	doc, ok := f.docs[docID]
	if !ok || doc.DeletionMark {
		return nil, apperror.NewNotFound("purchase", docID)
	}
	copied := *doc
	return &copied, nil
}

func (f *memPurchaseRepo) Update(ctx context.Context, doc *Purchase) error {
	stored := *doc
	f.docs[doc.ID] = &stored
	return nil
}

func (f *memPurchaseRepo) Delete(ctx context.Context, docID id.ID) error {
	if doc, ok := f.docs[docID]; ok {
		doc.DeletionMark = true
	}
	return nil
}

func (f *memPurchaseRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), f.lines[docID]...), nil
}

func (f *memPurchaseRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	f.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (f *memPurchaseRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	return domain.ListResult[*Purchase]{}, nil
}

func (f *memPurchaseRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Purchase, error) {
	return f.GetByID(ctx, docID)
}

func qty(s string) types.Quantity {
	q, err := types.ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

type fixture struct {
	svc        *Service
	repo       *memPurchaseRepo
	ledgerRepo *memLedgerRepo
	products   *memProductRepo
}

func newFixture() *fixture {
	ledgerRepo := &memLedgerRepo{}
	productRepo := &memProductRepo{products: make(map[id.ID]*product.Product)}
	repo := newMemPurchaseRepo()
	txm := stubTxManager{}

	ledgerSvc := ledger.NewService(ledgerRepo, txm)
	productSvc := product.NewService(productRepo, ledgerSvc, txm)

	return &fixture{
		svc:        NewService(repo, productSvc, ledgerSvc, txm),
		repo:       repo,
		ledgerRepo: ledgerRepo,
		products:   productRepo,
	}
}

func (f *fixture) addProduct(name string) id.ID {
	p := product.NewProduct("SKU-"+name, name, "pcs")
	f.products.products[p.ID] = p
	return p.ID
}

func (f *fixture) stock(t *testing.T, pid id.ID) types.Quantity {
	t.Helper()
	b, err := f.ledgerRepo.Balance(context.Background(), pid)
	require.NoError(t, err)
	return b
}

func testDate() time.Time {
	return time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
}

func TestService_Create_AppendsPositiveEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")
	gadget := f.addProduct("Gadget")

	doc := New("Acme Supplies", "INV-001", testDate())
	doc.AddLine(widget, qty("50"), types.MustMoney("10.00"))
	doc.AddLine(gadget, qty("5"), types.MustMoney("99.90"))

	require.NoError(t, f.svc.Create(ctx, doc))

	assert.Equal(t, qty("50"), f.stock(t, widget))
	assert.Equal(t, qty("5"), f.stock(t, gadget))

	// total = 50*10.00 + 5*99.90
	assert.True(t, doc.TotalAmount.Equal(types.MustMoney("999.50")))

	entries, err := f.ledgerRepo.EntriesByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, ledger.TypePurchase, e.Type)
		assert.Equal(t, DocumentType, e.DocumentType)
		assert.True(t, e.Delta.IsPositive())
	}
}

func TestService_Create_UnknownProductRejectsEverything(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")

	doc := New("Acme Supplies", "INV-002", testDate())
	doc.AddLine(widget, qty("10"), types.MustMoney("1"))
	doc.AddLine(id.New(), qty("10"), types.MustMoney("1")) // not in catalog

	err := f.svc.Create(ctx, doc)

	require.Error(t, err)
	assert.Empty(t, f.ledgerRepo.entries)
	assert.Empty(t, f.repo.docs)
}

func TestService_Create_ValidationFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")

	tests := []struct {
		name  string
		build func() *Purchase
	}{
		{
			name: "no lines",
			build: func() *Purchase {
				return New("Acme", "INV-003", testDate())
			},
		},
		{
			name: "blank vendor",
			build: func() *Purchase {
				doc := New("  ", "INV-004", testDate())
				doc.AddLine(widget, qty("1"), types.MustMoney("1"))
				return doc
			},
		},
		{
			name: "zero quantity",
			build: func() *Purchase {
				doc := New("Acme", "INV-005", testDate())
				doc.AddLine(widget, 0, types.MustMoney("1"))
				return doc
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Create(ctx, tt.build())
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestService_Update_ReversesOldLinesThenRecordsNew(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addProduct("Alpha")
	b := f.addProduct("Beta")
	c := f.addProduct("Gamma")

	doc := New("Acme Supplies", "INV-010", testDate())
	doc.AddLine(a, qty("10"), types.MustMoney("2"))
	doc.AddLine(b, qty("20"), types.MustMoney("3"))
	require.NoError(t, f.svc.Create(ctx, doc))

	// Edit: drop Alpha, keep Beta at a new quantity, add Gamma.
	updated := New("Acme Supplies", "INV-010", testDate())
	updated.ID = doc.ID
	updated.AddLine(b, qty("25"), types.MustMoney("3"))
	updated.AddLine(c, qty("7"), types.MustMoney("4"))
	require.NoError(t, f.svc.Update(ctx, updated))

	assert.Equal(t, types.Quantity(0), f.stock(t, a))
	assert.Equal(t, qty("25"), f.stock(t, b))
	assert.Equal(t, qty("7"), f.stock(t, c))

	// History is append-only: 2 originals + 2 reversals + 2 fresh rows.
	entries, err := f.ledgerRepo.EntriesByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 6)

	var returns, purchases int
	for _, e := range entries {
		switch e.Type {
		case ledger.TypePurchaseReturn:
			returns++
			assert.True(t, e.Delta.IsNegative())
		case ledger.TypePurchase:
			purchases++
		}
	}
	assert.Equal(t, 2, returns)
	assert.Equal(t, 4, purchases)

	assert.True(t, updated.TotalAmount.Equal(types.MustMoney("103")))
}

func TestService_Update_VersionComesFromLockedRow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")

	doc := New("Acme Supplies", "INV-011", testDate())
	doc.AddLine(widget, qty("10"), types.MustMoney("1"))
	require.NoError(t, f.svc.Create(ctx, doc))

	f.repo.docs[doc.ID].Version = 3

	updated := New("Acme Supplies", "INV-011", testDate())
	updated.ID = doc.ID
	updated.Version = 99 // stale client value, must be ignored
	updated.AddLine(widget, qty("12"), types.MustMoney("1"))
	require.NoError(t, f.svc.Update(ctx, updated))

	assert.Equal(t, 3, f.repo.docs[doc.ID].Version)
}

func TestService_Update_BlockedWhenStockConsumed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")

	doc := New("Acme Supplies", "INV-012", testDate())
	doc.AddLine(widget, qty("50"), types.MustMoney("1"))
	require.NoError(t, f.svc.Create(ctx, doc))

	// A later sale consumed 30 of the 50.
	sale := ledger.NewEntry(widget, ledger.TypeSale, qty("-30"), testDate())
	require.NoError(t, f.ledgerRepo.Append(ctx, []ledger.Entry{sale}))

	updated := New("Acme Supplies", "INV-012", testDate())
	updated.ID = doc.ID
	updated.AddLine(widget, qty("10"), types.MustMoney("1"))

	err := f.svc.Update(ctx, updated)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReversalBlocked, appErr.Code)
	assert.Contains(t, appErr.Message, "Widget")
	assert.Contains(t, appErr.Message, "available 20")
	assert.Contains(t, appErr.Message, "required 50")

	// Nothing changed.
	assert.Equal(t, qty("20"), f.stock(t, widget))
	assert.Equal(t, 1, f.repo.docs[doc.ID].Version)
}

func TestService_Delete_ReversesAndSoftDeletes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")

	doc := New("Acme Supplies", "INV-013", testDate())
	doc.AddLine(widget, qty("50"), types.MustMoney("1"))
	require.NoError(t, f.svc.Create(ctx, doc))

	require.NoError(t, f.svc.Delete(ctx, doc.ID))

	assert.Equal(t, types.Quantity(0), f.stock(t, widget))
	assert.True(t, f.repo.docs[doc.ID].DeletionMark)
	assert.Empty(t, f.repo.lines[doc.ID])

	// Ledger history of the document stays intact.
	entries, err := f.ledgerRepo.EntriesByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestService_Delete_BlockedWhenStockConsumed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")

	doc := New("Acme Supplies", "INV-014", testDate())
	doc.AddLine(widget, qty("50"), types.MustMoney("1"))
	require.NoError(t, f.svc.Create(ctx, doc))

	sale := ledger.NewEntry(widget, ledger.TypeSale, qty("-30"), testDate())
	require.NoError(t, f.ledgerRepo.Append(ctx, []ledger.Entry{sale}))

	err := f.svc.Delete(ctx, doc.ID)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReversalBlocked, appErr.Code)
	assert.False(t, f.repo.docs[doc.ID].DeletionMark)
}

func TestService_GetByID_LoadsLines(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	widget := f.addProduct("Widget")

	doc := New("Acme Supplies", "INV-015", testDate())
	doc.AddLine(widget, qty("10"), types.MustMoney("2.50"))
	require.NoError(t, f.svc.Create(ctx, doc))

	loaded, err := f.svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, widget, loaded.Lines[0].ProductID)
	assert.True(t, loaded.Lines[0].Amount.Equal(types.MustMoney("25")))
}

func TestService_GetByID_NotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetByID(context.Background(), id.New())

	assert.True(t, apperror.IsNotFound(err))
}
