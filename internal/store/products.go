package store

import (
	"context"
	"fmt"
	"strings"

	"foodtruck/pos/domain"

	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, description, category, price, image_url, available, sort_order, created_at, updated_at`

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := selectAll(ctx, s.db, &products, `SELECT `+productColumns+` FROM products ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := get(ctx, s.db, &p, `SELECT `+productColumns+` FROM products WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductsByID loads the given products keyed by id. Missing ids are simply absent.
func ProductsByID(ctx context.Context, q Queryer, ids []int64) (map[int64]domain.Product, error) {
	out := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := selectAll(ctx, q, &products, query, args...); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	now := s.now()
	p.Name = strings.TrimSpace(p.Name)
	id, err := insertID(ctx, s.db,
		`INSERT INTO products (name, description, category, price, image_url, available, sort_order, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.Category, p.Price, p.ImageURL, p.Available, p.SortOrder, now, now)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	p.ID, p.CreatedAt, p.UpdatedAt = id, now, now
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = s.now()
	err := mustAffect(exec(ctx, s.db,
		`UPDATE products SET name = ?, description = ?, category = ?, price = ?, image_url = ?, available = ?, sort_order = ?, updated_at = ?
         WHERE id = ?`,
		strings.TrimSpace(p.Name), p.Description, p.Category, p.Price, p.ImageURL, p.Available, p.SortOrder, p.UpdatedAt, p.ID))
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes a product that was never sold. Products referenced by
// order history are marked unavailable instead and archived is true.
func (s *Store) DeleteProduct(ctx context.Context, id int64) (archived bool, err error) {
	var sold int64
	if err := get(ctx, s.db, &sold, `SELECT COUNT(*) FROM order_items WHERE product_id = ?`, id); err != nil {
		return false, err
	}
	if sold > 0 {
		err := mustAffect(exec(ctx, s.db, `UPDATE products SET available = ?, updated_at = ? WHERE id = ?`, false, s.now(), id))
		return err == nil, err
	}
	return false, mustAffect(exec(ctx, s.db, `DELETE FROM products WHERE id = ?`, id))
}

func (s *Store) Recipe(ctx context.Context, productID int64) ([]domain.ProductIngredient, error) {
	lines := []domain.ProductIngredient{}
	err := selectAll(ctx, s.db, &lines,
		`SELECT id, product_id, stock_item_id, quantity FROM product_ingredients WHERE product_id = ? ORDER BY id`, productID)
	return lines, err
}

// SetRecipe replaces the whole recipe of a product.
func (s *Store) SetRecipe(ctx context.Context, productID int64, lines []domain.ProductIngredient) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := checkStockItems(ctx, tx, lines); err != nil {
			return err
		}
		if _, err := exec(ctx, tx, `DELETE FROM product_ingredients WHERE product_id = ?`, productID); err != nil {
			return fmt.Errorf("clear recipe: %w", err)
		}
		for i := range lines {
			lines[i].ProductID = productID
			id, err := insertID(ctx, tx,
				`INSERT INTO product_ingredients (product_id, stock_item_id, quantity) VALUES (?, ?, ?)`,
				productID, lines[i].StockItemID, lines[i].Quantity)
			if err != nil {
				return fmt.Errorf("insert recipe line: %w", err)
			}
			lines[i].ID = id
		}
		return nil
	})
}

// checkStockItems fails with ErrUnknownStockItem when a recipe line points
// at a stock item that does not exist.
func checkStockItems(ctx context.Context, q Queryer, lines []domain.ProductIngredient) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.StockItemID
	}
	query, args, err := sqlx.In(`SELECT id FROM stock_items WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	var found []int64
	if err := selectAll(ctx, q, &found, query, args...); err != nil {
		return fmt.Errorf("load stock items: %w", err)
	}
	known := make(map[int64]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: %d", ErrUnknownStockItem, id)
		}
	}
	return nil
}

const addonColumns = `id, name, price, available`

func (s *Store) ListAddons(ctx context.Context) ([]domain.Addon, error) {
	addons := []domain.Addon{}
	err := selectAll(ctx, s.db, &addons, `SELECT `+addonColumns+` FROM addons ORDER BY name`)
	return addons, err
}

func AddonsByID(ctx context.Context, q Queryer, ids []int64) (map[int64]domain.Addon, error) {
	out := make(map[int64]domain.Addon, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+addonColumns+` FROM addons WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var addons []domain.Addon
	if err := selectAll(ctx, q, &addons, query, args...); err != nil {
		return nil, fmt.Errorf("load addons: %w", err)
	}
	for _, a := range addons {
		out[a.ID] = a
	}
	return out, nil
}

func (s *Store) CreateAddon(ctx context.Context, a *domain.Addon) error {
	id, err := insertID(ctx, s.db, `INSERT INTO addons (name, price, available) VALUES (?, ?, ?)`,
		strings.TrimSpace(a.Name), a.Price, a.Available)
	if err != nil {
		return fmt.Errorf("create addon: %w", err)
	}
	a.ID = id
	return nil
}

func (s *Store) UpdateAddon(ctx context.Context, a *domain.Addon) error {
	return mustAffect(exec(ctx, s.db, `UPDATE addons SET name = ?, price = ?, available = ? WHERE id = ?`,
		strings.TrimSpace(a.Name), a.Price, a.Available, a.ID))
}

func (s *Store) DeleteAddon(ctx context.Context, id int64) error {
	return mustAffect(exec(ctx, s.db, `DELETE FROM addons WHERE id = ?`, id))
}
