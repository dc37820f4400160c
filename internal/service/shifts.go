package service

import (
	"context"
	"errors"
	"math"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"foodtruck/pos/domain"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/store"
)

const shiftNameLayout = "2006-01-02"

// ShiftName is the register name for the local calendar day of the store.
func (s *Service) ShiftName() string {
	return s.store.Now().In(s.loc).Format(shiftNameLayout)
}

// OpenShift opens today's register. An already open register for today is
// returned as is and a closed one is reopened; a register left open from
// another day must be closed first.
func (s *Service) OpenShift(ctx context.Context, openedBy *int64, openingCash float64) (*domain.Shift, error) {
	name := s.ShiftName()
	var shift *domain.Shift
	event := realtime.Update
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		open, err := store.OpenShift(ctx, tx)
		switch {
		case err == nil && open.Name == name:
			shift, event = open, ""
			return nil
		case err == nil:
			return ErrShiftConflict
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		existing, err := store.ShiftByName(ctx, tx, name)
		if errors.Is(err, store.ErrNotFound) {
			shift = &domain.Shift{
				Name:        name,
				Status:      domain.ShiftOpen,
				OpeningCash: round2(openingCash),
				OpenedBy:    openedBy,
				OpenedAt:    s.store.Now(),
			}
			event = realtime.Insert
			return store.CreateShift(ctx, tx, shift)
		}
		if err != nil {
			return err
		}
		if err := store.ReopenShift(ctx, tx, existing.ID); err != nil {
			return err
		}
		shift, err = store.GetShift(ctx, tx, existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if event != "" {
		s.log.Info("shift opened", zap.String("name", shift.Name), zap.String("event", event))
		s.publish(ctx, realtime.TableShifts, event, shift)
	}
	return shift, nil
}

// closeRejectNote is appended to web orders still pending when their shift closes.
const closeRejectNote = "Rejected: shift closed"

// CloseShift rejects the web orders nobody answered, aggregates the open
// shift's sales by payment method and closes it.
func (s *Service) CloseShift(ctx context.Context) (*domain.Shift, error) {
	var shift *domain.Shift
	var rejected []int64
	err := s.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		open, err := store.OpenShift(ctx, tx)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoOpenShift
		}
		if err != nil {
			return err
		}
		if _, err := store.LockShift(ctx, tx, open.ID); err != nil {
			return err
		}
		if rejected, err = store.RejectPendingOrders(ctx, tx, open.ID, closeRejectNote, s.store.Now()); err != nil {
			return err
		}
		totals, err := store.ShiftTotals(ctx, tx, open.ID)
		if err != nil {
			return err
		}
		totals = roundTotals(totals)
		if err := store.CloseShift(ctx, tx, open.ID, totals, s.store.Now()); err != nil {
			return err
		}
		shift, err = store.GetShift(ctx, tx, open.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, id := range rejected {
		if o, err := s.store.GetOrder(ctx, id); err == nil {
			s.publish(ctx, realtime.TableOrders, realtime.Update, o)
		}
	}
	s.log.Info("shift closed",
		zap.String("name", shift.Name),
		zap.Int64("orders", shift.TotalOrders),
		zap.Float64("sales", shift.TotalSales),
		zap.Float64("expenses", shift.TotalExpenses),
		zap.Int("rejected_pending", len(rejected)))
	s.publish(ctx, realtime.TableShifts, realtime.Update, shift)
	return shift, nil
}

func (s *Service) CurrentShift(ctx context.Context) (*domain.Shift, error) {
	shift, err := s.store.CurrentShift(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoOpenShift
	}
	return shift, err
}

func (s *Service) GetShift(ctx context.Context, id int64) (*domain.Shift, error) {
	return s.store.GetShift(ctx, id)
}

func (s *Service) ListShifts(ctx context.Context, limit int) ([]domain.Shift, error) {
	return s.store.ListShifts(ctx, limit)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundTotals(t domain.ShiftTotals) domain.ShiftTotals {
	t.Sales = round2(t.Sales)
	t.Cash = round2(t.Cash)
	t.Credit = round2(t.Credit)
	t.Debit = round2(t.Debit)
	t.Pix = round2(t.Pix)
	t.Expenses = round2(t.Expenses)
	return t
}
