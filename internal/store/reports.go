package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"foodtruck/pos/domain"
)

type RankingEntry struct {
	ProductID   int64   `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	UnitsSold   int64   `db:"units_sold" json:"units_sold"`
	Revenue     float64 `db:"revenue" json:"revenue"`
}

// SalesRanking ranks products of counted orders by units sold, then revenue,
// over [from, to).
func (s *Store) SalesRanking(ctx context.Context, from, to time.Time, limit int) ([]RankingEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	ranking := []RankingEntry{}
	query, args, err := sqlx.In(
		`SELECT oi.product_id, oi.product_name, SUM(oi.quantity) AS units_sold, COALESCE(SUM(oi.line_total), 0.0) AS revenue
         FROM order_items oi JOIN orders o ON o.id = oi.order_id
         WHERE o.status IN (?) AND o.created_at >= ? AND o.created_at < ?
         GROUP BY oi.product_id, oi.product_name
         ORDER BY units_sold DESC, revenue DESC, oi.product_name
         LIMIT ?`,
		domain.CountedStatuses, from.UTC(), to.UTC(), limit)
	if err == nil {
		err = selectAll(ctx, s.db, &ranking, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("sales ranking: %w", err)
	}
	return ranking, nil
}

type Summary struct {
	From      time.Time          `json:"from"`
	To        time.Time          `json:"to"`
	Orders    int64              `json:"orders"`
	Revenue   float64            `json:"revenue"`
	AvgTicket float64            `json:"average_ticket"`
	ByPayment map[string]float64 `json:"by_payment"`
	Expenses  float64            `json:"expenses"`
	Net       float64            `json:"net"`
}

// SalesSummary computes raw aggregates over [from, to); the caller rounds.
func (s *Store) SalesSummary(ctx context.Context, from, to time.Time) (Summary, error) {
	sum := Summary{From: from, To: to, ByPayment: map[string]float64{}}
	var rows []paymentTotal
	query, args, err := sqlx.In(
		`SELECT payment_method, COUNT(*) AS orders, COALESCE(SUM(total), 0.0) AS total
         FROM orders WHERE status IN (?) AND created_at >= ? AND created_at < ?
         GROUP BY payment_method`,
		domain.CountedStatuses, from.UTC(), to.UTC())
	if err == nil {
		err = selectAll(ctx, s.db, &rows, query, args...)
	}
	if err != nil {
		return sum, fmt.Errorf("sales summary: %w", err)
	}
	for _, r := range rows {
		sum.Orders += r.Orders
		sum.Revenue += r.Total
		sum.ByPayment[r.Method] = r.Total
	}
	if err := get(ctx, s.db, &sum.Expenses,
		`SELECT COALESCE(SUM(amount), 0.0) FROM expenses WHERE created_at >= ? AND created_at < ?`, from.UTC(), to.UTC()); err != nil {
		return sum, fmt.Errorf("summary expenses: %w", err)
	}
	if sum.Orders > 0 {
		sum.AvgTicket = sum.Revenue / float64(sum.Orders)
	}
	sum.Net = sum.Revenue - sum.Expenses
	return sum, nil
}
