package store

import (
	"context"
	"fmt"
	"strings"

	"foodtruck/pos/domain"
)

func (s *Store) ListDeliveryAreas(ctx context.Context, activeOnly bool) ([]domain.DeliveryArea, error) {
	query := `SELECT id, name, fee, active FROM delivery_areas`
	var args []any
	if activeOnly {
		query += " WHERE active = ?"
		args = append(args, true)
	}
	areas := []domain.DeliveryArea{}
	err := selectAll(ctx, s.db, &areas, query+" ORDER BY name", args...)
	return areas, err
}

func GetDeliveryArea(ctx context.Context, q Queryer, id int64) (*domain.DeliveryArea, error) {
	var a domain.DeliveryArea
	if err := get(ctx, q, &a, `SELECT id, name, fee, active FROM delivery_areas WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateDeliveryArea(ctx context.Context, a *domain.DeliveryArea) error {
	id, err := insertID(ctx, s.db, `INSERT INTO delivery_areas (name, fee, active) VALUES (?, ?, ?)`,
		strings.TrimSpace(a.Name), a.Fee, a.Active)
	if err != nil {
		return fmt.Errorf("create delivery area: %w", err)
	}
	a.ID = id
	return nil
}

func (s *Store) UpdateDeliveryArea(ctx context.Context, a *domain.DeliveryArea) error {
	return mustAffect(exec(ctx, s.db, `UPDATE delivery_areas SET name = ?, fee = ?, active = ? WHERE id = ?`,
		strings.TrimSpace(a.Name), a.Fee, a.Active, a.ID))
}

// DeleteDeliveryArea deactivates areas already used by orders and removes the rest.
func (s *Store) DeleteDeliveryArea(ctx context.Context, id int64) error {
	var used int64
	if err := get(ctx, s.db, &used, `SELECT COUNT(*) FROM orders WHERE delivery_area_id = ?`, id); err != nil {
		return err
	}
	if used > 0 {
		return mustAffect(exec(ctx, s.db, `UPDATE delivery_areas SET active = ? WHERE id = ?`, false, id))
	}
	return mustAffect(exec(ctx, s.db, `DELETE FROM delivery_areas WHERE id = ?`, id))
}
