package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cremfish/storefront/internal/models"
	"github.com/cremfish/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, int, error)
	UpdateRating(ctx context.Context, id uuid.UUID, averageRating float64, reviewCount int) error
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, name, brand, category, price, stock, description, summary, image, availability_date, average_rating, review_count, created_at, updated_at`

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (id, name, brand, category, price, stock, description, summary, image, availability_date, average_rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query,
		product.ID, product.Name, product.Brand, product.Category, product.Price, product.Stock,
		product.Description, product.Summary, product.Image, product.AvailabilityDate,
		product.AverageRating, product.ReviewCount,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(
		&product.ID, &product.Name, &product.Brand, &product.Category, &product.Price, &product.Stock,
		&product.Description, &product.Summary, &product.Image, &product.AvailabilityDate,
		&product.AverageRating, &product.ReviewCount, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, brand = $2, category = $3, price = $4, stock = $5, description = $6, summary = $7, image = $8, availability_date = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query,
		product.Name, product.Brand, product.Category, product.Price, product.Stock,
		product.Description, product.Summary, product.Image, product.AvailabilityDate, product.ID,
	).Scan(&product.UpdatedAt)

	return err
}

func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deleted == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateRating writes the derived aggregate fields back onto the product.
func (r *productRepository) UpdateRating(ctx context.Context, id uuid.UUID, averageRating float64, reviewCount int) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET average_rating = $1, review_count = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, averageRating, reviewCount, id)
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updated == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListProducts applies the whole filter server side: predicates, ordering and
// pagination all live in the query, never in a fetched-then-filtered slice.
func (r *productRepository) ListProducts(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var conditions []string
	var args []any

	if filter.Category != "" && filter.Category != "all" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR brand ILIKE $%d OR description ILIKE $%d)", n, n, n))
	}

	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price >= $%d", len(args)))
	}

	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		conditions = append(conditions, fmt.Sprintf("price <= $%d", len(args)))
	}

	if filter.InStock {
		conditions = append(conditions, "stock > 0")
	}

	if filter.MinRating != nil {
		args = append(args, *filter.MinRating)
		conditions = append(conditions, fmt.Sprintf("average_rating >= $%d", len(args)))
	}

	if len(filter.Brands) > 0 {
		args = append(args, pq.Array(filter.Brands))
		conditions = append(conditions, fmt.Sprintf("brand = ANY($%d)", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int

	countQuery := `SELECT COUNT(*) FROM products` + where

	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var orderBy string

	switch filter.Sort {
	case models.SortPriceAsc:
		orderBy = " ORDER BY price ASC, name ASC"
	case models.SortPriceDesc:
		orderBy = " ORDER BY price DESC, name ASC"
	case models.SortStockDesc:
		orderBy = " ORDER BY stock DESC, name ASC"
	default:
		orderBy = " ORDER BY name ASC"
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + orderBy

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))

		page := filter.Page
		if page < 1 {
			page = 1
		}

		args = append(args, (page-1)*filter.Limit)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product := &models.Product{}

		err := rows.Scan(
			&product.ID, &product.Name, &product.Brand, &product.Category, &product.Price, &product.Stock,
			&product.Description, &product.Summary, &product.Image, &product.AvailabilityDate,
			&product.AverageRating, &product.ReviewCount, &product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}
