package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tasheen2002/Security-Project/internal/domain"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// ValidationError names the specific field that failed structural
// validation so the client can surface it next to the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// InsufficientStockError reports which product was short at checkout.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
}

// NotCancellableError carries the status that blocked cancellation.
type NotCancellableError struct {
	Status domain.OrderStatus
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("cannot cancel order with status: %s", e.Status)
}
