package engine

import (
	"errors"
	"fmt"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
)

var (
	ErrBookAlreadyInitialized = errors.New("order book is already initialized")
	ErrBookNotInitialized     = errors.New("order book is not initialized")
	ErrInvalidPrice           = errors.New("price must be finite and non-negative")
)

// PriceNotFoundError is returned when a deletion targets a price absent from its side.
type PriceNotFoundError struct {
	Side  model.Side
	Price model.Price
}

func (e *PriceNotFoundError) Error() string {
	return fmt.Sprintf("cannot update order book, %s price %v not found", e.Side, e.Price)
}

// IsPriceNotFound reports whether err is, or wraps, a PriceNotFoundError.
func IsPriceNotFound(err error) bool {
	var target *PriceNotFoundError
	return errors.As(err, &target)
}
