package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// menu.csv columns: name, category, price, description, sort_order.
const menuColumns = 3

// LoadMenu ingests the CSV into the products table, ignoring products that
// already exist by name. A missing file is not an error.
func LoadMenu(ctx context.Context, db *sqlx.DB, csvPath string, log *zap.Logger) (int, error) {
	file, err := os.Open(csvPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("no menu catalog to seed", zap.String("path", csvPath))
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("open menu catalog: %w", err)
	}
	defer file.Close()
	return loadMenu(ctx, db, file, log)
}

func loadMenu(ctx context.Context, db *sqlx.DB, r io.Reader, log *zap.Logger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("read menu header: %w", err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin menu seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		`INSERT INTO products (name, category, price, description, sort_order, available)
         VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT (name) DO NOTHING`))
	if err != nil {
		return 0, fmt.Errorf("prepare menu insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn("unable to read menu row", zap.Int("line", line), zap.Error(err))
			continue
		}
		if len(record) < menuColumns {
			continue
		}
		name := strings.TrimSpace(record[0])
		category := strings.TrimSpace(record[1])
		if name == "" {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[2]))
		if err != nil || price.IsNegative() {
			log.Warn("skipping menu row with invalid price", zap.Int("line", line), zap.String("name", name))
			continue
		}
		var description string
		if len(record) > 3 {
			description = strings.TrimSpace(record[3])
		}
		sortOrder := 0
		if len(record) > 4 {
			sortOrder, _ = strconv.Atoi(strings.TrimSpace(record[4]))
		}

		res, err := stmt.ExecContext(ctx, name, category, price.Round(2).InexactFloat64(), description, sortOrder, true)
		if err != nil {
			return 0, fmt.Errorf("insert menu item %s: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit menu seed: %w", err)
	}
	log.Info("seeded menu catalog", zap.Int("rows", rows))
	return rows, nil
}
