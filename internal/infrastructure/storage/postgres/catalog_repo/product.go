// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"shopledger/internal/core/apperror"
	"shopledger/internal/core/id"
	"shopledger/internal/domain"
	"shopledger/internal/domain/catalogs/product"
	"shopledger/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[product.Product](),
	}
}

var _ product.Repository = (*ProductRepo)(nil)

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *ProductRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(productsTable)
}

// Create inserts a new product using its "db" tags.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	data := postgres.StructToMap(p)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.Builder().
		Insert(productsTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", productsTable, err)
	}

	return nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &p, nil
}

// GetByCode retrieves a non-deleted product by its SKU.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", code)
		}
		return nil, fmt.Errorf("get by code: %w", err)
	}

	return &p, nil
}

// GetByIDs resolves many products in one query. Missing IDs are simply
// absent from the result map.
func (r *ProductRepo) GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*product.Product, error) {
	result := make(map[id.ID]*product.Product, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": productIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get by ids: %w", err)
	}

	for _, p := range items {
		result[p.ID] = p
	}

	return result, nil
}

// Update modifies a product with optimistic locking.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	data := postgres.StructToMap(p)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}

	delete(data, "id")
	delete(data, "version")

	q := r.Builder().
		Update(productsTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": p.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", productsTable, err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("product", p.ID)
	}

	p.SetVersion(version + 1)

	return nil
}

// SetDeletionMark sets or clears the deletion mark (soft delete).
func (r *ProductRepo) SetDeletionMark(ctx context.Context, productID id.ID, marked bool) error {
	q := r.Builder().
		Update(productsTable).
		Set("deletion_mark", marked).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set deletion mark: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set deletion mark: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}

	return nil
}

// List retrieves products with filtering and pagination.
func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}

	// Count total before pagination
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// ExistsByCode checks if a non-deleted product with the code exists.
func (r *ProductRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(productsTable).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	querier := r.txManager.GetQuerier(ctx)
	err = querier.QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists by code: %w", err)
	}

	return true, nil
}

// IsReferenced reports whether any purchase or sale line references the
// product.
func (r *ProductRepo) IsReferenced(ctx context.Context, productID id.ID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM doc_purchase_lines WHERE product_id = $1
			UNION ALL
			SELECT 1 FROM doc_sale_lines WHERE product_id = $1
		)
	`

	var referenced bool
	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, query, productID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("is referenced: %w", err)
	}

	return referenced, nil
}

// parseOrderBy validates the sort expression against known columns.
// Columns are whitelisted for SQL injection protection.
func (r *ProductRepo) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "name ASC", nil
	}

	field := orderBy
	direction := "ASC"
	if strings.HasPrefix(orderBy, "-") {
		field = orderBy[1:]
		direction = "DESC"
	}

	valid := false
	for _, col := range r.selectCols {
		if col == field {
			valid = true
			break
		}
	}
	if !valid {
		return "", apperror.NewValidation(fmt.Sprintf("invalid order by field: %s", field)).
			WithDetail("field", field)
	}

	return field + " " + direction, nil
}
