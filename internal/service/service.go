// Package service holds the POS workflows that span several tables: checkout,
// web order intake and acceptance, register shifts and reporting.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"foodtruck/pos/internal/pos"
	"foodtruck/pos/internal/realtime"
	"foodtruck/pos/internal/store"
)

type Service struct {
	store  *store.Store
	events realtime.Publisher
	shop   pos.Store
	loc    *time.Location
	log    *zap.Logger

	// sequence assigns the daily number inside the order transaction.
	sequence func(ctx context.Context, q store.Queryer, shiftID int64) (int64, error)
}

func New(st *store.Store, events realtime.Publisher, shop pos.Store, loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    st,
		events:   events,
		shop:     shop,
		loc:      loc,
		log:      log.Named("service"),
		sequence: store.NextDailyNumber,
	}
}

func (s *Service) Shop() pos.Store {
	return s.shop
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) publish(ctx context.Context, table, typ string, record any) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, realtime.Event{Table: table, Type: typ, Record: record, At: s.store.Now()})
}
