package service

import (
	"errors"

	"foodtruck/pos/internal/store"
)

var (
	ErrNotFound            = store.ErrNotFound
	ErrNoOpenShift         = errors.New("no open shift, open the register first")
	ErrStoreClosed         = errors.New("the store is closed right now")
	ErrShiftConflict       = errors.New("another shift is still open, close it first")
	ErrShiftClosed         = errors.New("the order's shift is already closed")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrUnavailableProduct  = errors.New("product unavailable")
	ErrUnavailableAddon    = errors.New("addon unavailable")
	ErrInvalidDeliveryArea = errors.New("delivery area not served")
	ErrAddressRequired     = errors.New("delivery orders require an address")
	ErrCustomerRequired    = errors.New("customer name is required")
	ErrInvalidRange        = errors.New("invalid date range")
	ErrSequenceExhausted   = errors.New("could not assign an order number, try again")
)
