package store

import (
	"context"
	"fmt"
	"strings"

	"foodtruck/pos/domain"
)

func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.CreatedAt = s.now()
	id, err := insertID(ctx, s.db,
		`INSERT INTO profiles (email, password, full_name, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Email, p.Password, p.FullName, p.Role, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	p.ID = id
	return nil
}

func (s *Store) ProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var p domain.Profile
	err := get(ctx, s.db, &p, `SELECT id, email, password, full_name, role, created_at FROM profiles WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	err := selectAll(ctx, s.db, &profiles, `SELECT id, email, full_name, role, created_at FROM profiles ORDER BY email`)
	return profiles, err
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return mustAffect(exec(ctx, s.db, `UPDATE profiles SET password = ? WHERE id = ?`, hash, id))
}

func (s *Store) CountProfiles(ctx context.Context) (int64, error) {
	var n int64
	err := get(ctx, s.db, &n, `SELECT COUNT(*) FROM profiles`)
	return n, err
}
