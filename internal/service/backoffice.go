package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/metrics"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/store"
)

// AdjustStock applies a relative correction (delivery received, waste...).
func (s *Service) AdjustStock(ctx context.Context, id int64, delta float64) (*domain.StockItem, error) {
	item, err := s.store.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.TableStockItems, realtime.Update, item)
	return item, nil
}

// SweepLowStock logs every item at or below its minimum and updates the gauge.
func (s *Service) SweepLowStock(ctx context.Context) ([]domain.StockItem, error) {
	items, err := s.store.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SetLowStock(len(items))
	for _, item := range items {
		s.log.Warn("stock item low",
			zap.String("item", item.Name),
			zap.Float64("quantity", item.Quantity),
			zap.Float64("min_quantity", item.MinQuantity))
	}
	return items, nil
}

// AddExpense books an expense, attaching it to the open shift when there is one.
func (s *Service) AddExpense(ctx context.Context, e *domain.Expense) error {
	if e.ShiftID == nil {
		shift, err := s.store.CurrentShift(ctx)
		switch {
		case err == nil:
			e.ShiftID = &shift.ID
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
	}
	e.Amount = round2(e.Amount)
	return s.store.CreateExpense(ctx, e)
}

func (s *Service) MarkPrinted(ctx context.Context, id int64) error {
	if err := s.store.MarkPrinted(ctx, id, s.store.Now()); err != nil {
		return err
	}
	s.publish(ctx, realtime.TablePrintJobs, realtime.Update, map[string]any{"id": id, "status": domain.PrintPrinted})
	return nil
}

// ClearPrintQueue drops all pending print jobs and returns how many were removed.
func (s *Service) ClearPrintQueue(ctx context.Context) (int64, error) {
	n, err := s.store.ClearPrintQueue(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("print queue cleared", zap.Int64("removed", n))
	if n > 0 {
		s.publish(ctx, realtime.TablePrintJobs, realtime.Delete, map[string]any{"removed": n})
	}
	return n, nil
}

// DayRange turns inclusive local dates (YYYY-MM-DD) into a UTC [from, to)
// window. Empty values default to today.
func (s *Service) DayRange(fromDay, toDay string) (time.Time, time.Time, error) {
	today := s.store.Now().In(s.loc).Format(shiftNameLayout)
	if fromDay == "" {
		fromDay = today
	}
	if toDay == "" {
		toDay = fromDay
	}
	from, err := time.ParseInLocation(shiftNameLayout, fromDay, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	to, err := time.ParseInLocation(shiftNameLayout, toDay, s.loc)
	if err != nil || to.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from.UTC(), to.AddDate(0, 0, 1).UTC(), nil
}

func (s *Service) SalesRanking(ctx context.Context, from, to time.Time, limit int) ([]store.RankingEntry, error) {
	ranking, err := s.store.SalesRanking(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	for i := range ranking {
		ranking[i].Revenue = round2(ranking[i].Revenue)
	}
	return ranking, nil
}

func (s *Service) SalesSummary(ctx context.Context, from, to time.Time) (store.Summary, error) {
	sum, err := s.store.SalesSummary(ctx, from, to)
	if err != nil {
		return sum, err
	}
	sum.Revenue = round2(sum.Revenue)
	sum.AvgTicket = round2(sum.AvgTicket)
	sum.Expenses = round2(sum.Expenses)
	sum.Net = round2(sum.Net)
	for k, v := range sum.ByPayment {
		sum.ByPayment[k] = round2(v)
	}
	return sum, nil
}
