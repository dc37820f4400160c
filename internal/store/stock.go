package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"foodtruck/pos/domain"

	"github.com/jmoiron/sqlx"
)

const stockColumns = `id, name, unit, quantity, min_quantity, updated_at`

func (s *Store) ListStock(ctx context.Context) ([]domain.StockItem, error) {
	items := []domain.StockItem{}
	err := selectAll(ctx, s.db, &items, `SELECT `+stockColumns+` FROM stock_items ORDER BY name`)
	return items, err
}

func (s *Store) LowStock(ctx context.Context) ([]domain.StockItem, error) {
	items := []domain.StockItem{}
	err := selectAll(ctx, s.db, &items, `SELECT `+stockColumns+` FROM stock_items WHERE quantity <= min_quantity ORDER BY name`)
	return items, err
}

func (s *Store) GetStockItem(ctx context.Context, id int64) (*domain.StockItem, error) {
	var item domain.StockItem
	if err := get(ctx, s.db, &item, `SELECT `+stockColumns+` FROM stock_items WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreateStockItem(ctx context.Context, item *domain.StockItem) error {
	item.UpdatedAt = s.now()
	if item.Unit == "" {
		item.Unit = "un"
	}
	id, err := insertID(ctx, s.db,
		`INSERT INTO stock_items (name, unit, quantity, min_quantity, updated_at) VALUES (?, ?, ?, ?, ?)`,
		strings.TrimSpace(item.Name), item.Unit, item.Quantity, item.MinQuantity, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create stock item: %w", err)
	}
	item.ID = id
	return nil
}

func (s *Store) UpdateStockItem(ctx context.Context, item *domain.StockItem) error {
	item.UpdatedAt = s.now()
	return mustAffect(exec(ctx, s.db,
		`UPDATE stock_items SET name = ?, unit = ?, quantity = ?, min_quantity = ?, updated_at = ? WHERE id = ?`,
		strings.TrimSpace(item.Name), item.Unit, item.Quantity, item.MinQuantity, item.UpdatedAt, item.ID))
}

func (s *Store) DeleteStockItem(ctx context.Context, id int64) error {
	return mustAffect(exec(ctx, s.db, `DELETE FROM stock_items WHERE id = ?`, id))
}

// AdjustStock adds delta (negative to remove) to the item's quantity.
func (s *Store) AdjustStock(ctx context.Context, id int64, delta float64) (*domain.StockItem, error) {
	var item domain.StockItem
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := mustAffect(exec(ctx, tx,
			`UPDATE stock_items SET quantity = quantity + ?, updated_at = ? WHERE id = ?`, delta, s.now(), id)); err != nil {
			return err
		}
		return get(ctx, tx, &item, `SELECT `+stockColumns+` FROM stock_items WHERE id = ?`, id)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Usage is one sold line as seen by the recipe deduction.
type Usage struct {
	ProductID int64
	Quantity  int64
}

// DeductRecipes lowers stock by recipe quantity times units sold and returns
// the touched items after the update. Quantities are allowed to go negative.
func DeductRecipes(ctx context.Context, q Queryer, usage []Usage, at time.Time) ([]domain.StockItem, error) {
	if len(usage) == 0 {
		return nil, nil
	}
	sold := make(map[int64]int64, len(usage))
	ids := make([]int64, 0, len(usage))
	for _, u := range usage {
		if _, ok := sold[u.ProductID]; !ok {
			ids = append(ids, u.ProductID)
		}
		sold[u.ProductID] += u.Quantity
	}

	query, args, err := sqlx.In(
		`SELECT id, product_id, stock_item_id, quantity FROM product_ingredients WHERE product_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var recipe []domain.ProductIngredient
	if err := selectAll(ctx, q, &recipe, query, args...); err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	consumed := map[int64]float64{}
	for _, line := range recipe {
		consumed[line.StockItemID] += line.Quantity * float64(sold[line.ProductID])
	}
	if len(consumed) == 0 {
		return nil, nil
	}

	stockIDs := make([]int64, 0, len(consumed))
	for id := range consumed {
		stockIDs = append(stockIDs, id)
	}
	sort.Slice(stockIDs, func(i, j int) bool { return stockIDs[i] < stockIDs[j] })

	for _, id := range stockIDs {
		if _, err := exec(ctx, q,
			`UPDATE stock_items SET quantity = quantity - ?, updated_at = ? WHERE id = ?`, consumed[id], at, id); err != nil {
			return nil, fmt.Errorf("deduct stock item %d: %w", id, err)
		}
	}

	query, args, err = sqlx.In(`SELECT `+stockColumns+` FROM stock_items WHERE id IN (?) ORDER BY id`, stockIDs)
	if err != nil {
		return nil, err
	}
	var items []domain.StockItem
	if err := selectAll(ctx, q, &items, query, args...); err != nil {
		return nil, fmt.Errorf("reload stock: %w", err)
	}
	return items, nil
}
