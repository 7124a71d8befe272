package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
	"shopledger/internal/domain"
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
	return nil, nil
}

func (f *memLedgerRepo) History(ctx context.Context, filter ledger.HistoryFilter) ([]ledger.Entry, error) {
	return f.entries, nil
}

func (f *memLedgerRepo) LockProducts(ctx context.Context, productIDs []id.ID) error {
	return nil
}

type memProductRepo struct {
	products   map[id.ID]*Product
	referenced map[id.ID]bool
}

func (f *memProductRepo) Create(ctx context.Context, p *Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *memProductRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return p, nil
}

func (f *memProductRepo) GetByCode(ctx context.Context, code string) (*Product, error) {
	for _, p := range f.products {
		if p.Code == code && !p.DeletionMark {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (f *memProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*Product, error) {
	result := make(map[id.ID]*Product)
	for _, pid := range productIDs {
		if p, ok := f.products[pid]; ok {
			result[pid] = p
		}
	}
	return result, nil
}

func (f *memProductRepo) Update(ctx context.Context, p *Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *memProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error {
	if p, ok := f.products[productID]; ok {
		p.DeletionMark = marked
	}
	return nil
}

func (f *memProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	items := make([]*Product, 0, len(f.products))
	for _, p := range f.products {
		items = append(items, p)
	}
	return domain.ListResult[*Product]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *memProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := f.GetByCode(ctx, code)
	return err == nil, nil
}

func (f *memProductRepo) IsReferenced(ctx context.Context, productID id.ID) (bool, error) {
	return f.referenced[productID], nil
}

func newTestService() (*Service, *memProductRepo, *memLedgerRepo) {
	repo := &memProductRepo{
		products:   make(map[id.ID]*Product),
		referenced: make(map[id.ID]bool),
	}
	ledgerRepo := &memLedgerRepo{}
	txm := stubTxManager{}
	return NewService(repo, ledger.NewService(ledgerRepo, txm), txm), repo, ledgerRepo
}

func TestService_Create_SeedsOpeningStock(t *testing.T) {
	svc, _, ledgerRepo := newTestService()
	ctx := context.Background()

	p := NewProduct("SKU-1", "Widget", "pcs")
	require.NoError(t, svc.Create(ctx, p, types.NewQuantityFromFloat64(25)))

	require.Len(t, ledgerRepo.entries, 1)
	entry := ledgerRepo.entries[0]
	assert.Equal(t, ledger.TypeInitialization, entry.Type)
	assert.Equal(t, p.ID, entry.ProductID)
	assert.Equal(t, types.NewQuantityFromFloat64(25), entry.Delta)
	assert.Equal(t, "opening balance", entry.Notes)
}

func TestService_Create_ZeroOpeningStockWritesNoEntry(t *testing.T) {
	svc, _, ledgerRepo := newTestService()

	p := NewProduct("SKU-1", "Widget", "pcs")
	require.NoError(t, svc.Create(context.Background(), p, 0))

	assert.Empty(t, ledgerRepo.entries)
}

func TestService_Create_NegativeOpeningStockRejected(t *testing.T) {
	svc, repo, _ := newTestService()

	p := NewProduct("SKU-1", "Widget", "pcs")
	err := svc.Create(context.Background(), p, types.NewQuantityFromFloat64(-1))

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.products)
}

func TestService_Create_DuplicateCodeRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, NewProduct("SKU-1", "Widget", "pcs"), 0))

	err := svc.Create(ctx, NewProduct("SKU-1", "Widget copy", "pcs"), 0)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_Delete_BlockedWhenReferenced(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p := NewProduct("SKU-1", "Widget", "pcs")
	require.NoError(t, svc.Create(ctx, p, 0))
	repo.referenced[p.ID] = true

	err := svc.Delete(ctx, p.ID)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.False(t, repo.products[p.ID].DeletionMark)
}

func TestService_Delete_SoftDeletesUnreferenced(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p := NewProduct("SKU-1", "Widget", "pcs")
	require.NoError(t, svc.Create(ctx, p, 0))

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.True(t, repo.products[p.ID].DeletionMark)
}

func TestService_Resolve(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p := NewProduct("SKU-1", "Widget", "pcs")
	require.NoError(t, svc.Create(ctx, p, 0))

	resolved, err := svc.Resolve(ctx, []id.ID{p.ID})
	require.NoError(t, err)
	assert.Equal(t, p, resolved[p.ID])

	_, err = svc.Resolve(ctx, []id.ID{p.ID, id.New()})
	require.Error(t, err)

	// Soft-deleted products are unknown to documents.
	repo.products[p.ID].DeletionMark = true
	_, err = svc.Resolve(ctx, []id.ID{p.ID})
	require.Error(t, err)
}

func TestProduct_Validate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr bool
	}{
		{name: "valid", mutate: func(p *Product) {}},
		{name: "blank code", mutate: func(p *Product) { p.Code = "  " }, wantErr: true},
		{name: "blank name", mutate: func(p *Product) { p.Name = "" }, wantErr: true},
		{name: "negative purchase price", mutate: func(p *Product) { p.PurchasePrice = types.MustMoney("-1") }, wantErr: true},
		{name: "negative sale price", mutate: func(p *Product) { p.SalePrice = types.MustMoney("-1") }, wantErr: true},
		{name: "negative reorder point", mutate: func(p *Product) { p.ReorderPoint = types.NewQuantityFromFloat64(-1) }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProduct("SKU-1", "Widget", "pcs")
			tt.mutate(p)
			err := p.Validate(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
