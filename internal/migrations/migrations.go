package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"foodtruck/pos/internal/database"
)

// schema is written once for both dialects; dialect() fills in the column types.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
            id {{pk}},
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            full_name TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL,
            created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS products (
            id {{pk}},
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            price {{real}} NOT NULL,
            image_url TEXT NOT NULL DEFAULT '',
            available BOOLEAN NOT NULL DEFAULT TRUE,
            sort_order INTEGER NOT NULL DEFAULT 0,
            created_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
            UNIQUE(name)
        );`,
	`CREATE TABLE IF NOT EXISTS addons (
            id {{pk}},
            name TEXT NOT NULL UNIQUE,
            price {{real}} NOT NULL,
            available BOOLEAN NOT NULL DEFAULT TRUE
        );`,
	`CREATE TABLE IF NOT EXISTS stock_items (
            id {{pk}},
            name TEXT NOT NULL UNIQUE,
            unit TEXT NOT NULL DEFAULT 'un',
            quantity {{real}} NOT NULL DEFAULT 0,
            min_quantity {{real}} NOT NULL DEFAULT 0,
            updated_at {{ts}} NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE TABLE IF NOT EXISTS product_ingredients (
            id {{pk}},
            product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
            stock_item_id BIGINT NOT NULL REFERENCES stock_items(id) ON DELETE CASCADE,
            quantity {{real}} NOT NULL,
            UNIQUE(product_id, stock_item_id)
        );`,
	`CREATE TABLE IF NOT EXISTS delivery_areas (
            id {{pk}},
            name TEXT NOT NULL UNIQUE,
            fee {{real}} NOT NULL DEFAULT 0,
            active BOOLEAN NOT NULL DEFAULT TRUE
        );`,
	`CREATE TABLE IF NOT EXISTS shifts (
            id {{pk}},
            name TEXT NOT NULL UNIQUE,
            status TEXT NOT NULL,
            opening_cash {{real}} NOT NULL DEFAULT 0,
            opened_by BIGINT REFERENCES profiles(id),
            opened_at {{ts}} NOT NULL,
            closed_at {{ts}},
            total_orders BIGINT NOT NULL DEFAULT 0,
            total_sales {{real}} NOT NULL DEFAULT 0,
            total_cash {{real}} NOT NULL DEFAULT 0,
            total_credit {{real}} NOT NULL DEFAULT 0,
            total_debit {{real}} NOT NULL DEFAULT 0,
            total_pix {{real}} NOT NULL DEFAULT 0,
            total_expenses {{real}} NOT NULL DEFAULT 0
        );`,
	`CREATE TABLE IF NOT EXISTS orders (
            id {{pk}},
            public_id TEXT NOT NULL UNIQUE,
            shift_id BIGINT NOT NULL REFERENCES shifts(id),
            daily_number BIGINT NOT NULL,
            source TEXT NOT NULL,
            type TEXT NOT NULL,
            status TEXT NOT NULL,
            customer_name TEXT NOT NULL DEFAULT '',
            customer_phone TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            delivery_area_id BIGINT REFERENCES delivery_areas(id),
            delivery_fee {{real}} NOT NULL DEFAULT 0,
            subtotal {{real}} NOT NULL,
            discount_type TEXT NOT NULL DEFAULT 'none',
            discount_value {{real}} NOT NULL DEFAULT 0,
            discount_amount {{real}} NOT NULL DEFAULT 0,
            total {{real}} NOT NULL,
            payment_method TEXT NOT NULL,
            change_for {{real}} NOT NULL DEFAULT 0,
            notes TEXT NOT NULL DEFAULT '',
            created_by BIGINT REFERENCES profiles(id),
            created_at {{ts}} NOT NULL,
            updated_at {{ts}} NOT NULL,
            UNIQUE(shift_id, daily_number)
        );`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);`,
	`CREATE TABLE IF NOT EXISTS order_items (
            id {{pk}},
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            product_id BIGINT NOT NULL REFERENCES products(id),
            product_name TEXT NOT NULL,
            quantity BIGINT NOT NULL,
            unit_price {{real}} NOT NULL,
            addons TEXT NOT NULL DEFAULT '[]',
            addons_total {{real}} NOT NULL DEFAULT 0,
            line_total {{real}} NOT NULL,
            notes TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);`,
	`CREATE TABLE IF NOT EXISTS expenses (
            id {{pk}},
            shift_id BIGINT REFERENCES shifts(id),
            description TEXT NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            amount {{real}} NOT NULL,
            created_by BIGINT REFERENCES profiles(id),
            created_at {{ts}} NOT NULL
        );`,
	`CREATE TABLE IF NOT EXISTS print_jobs (
            id {{pk}},
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at {{ts}} NOT NULL,
            printed_at {{ts}}
        );`,
}

func dialect(driver string) *strings.Replacer {
	if database.IsPostgresDriver(driver) {
		return strings.NewReplacer("{{pk}}", "BIGSERIAL PRIMARY KEY", "{{ts}}", "TIMESTAMPTZ", "{{real}}", "DOUBLE PRECISION")
	}
	return strings.NewReplacer("{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT", "{{ts}}", "TIMESTAMP", "{{real}}", "REAL")
}

// Statements returns the schema for the given driver.
func Statements(driver string) []string {
	r := dialect(driver)
	out := make([]string, len(schema))
	for i, stmt := range schema {
		out[i] = r.Replace(stmt)
	}
	return out
}

// Run creates the database schema required for the POS backend.
func Run(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range Statements(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
