package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_Total(t *testing.T) {
	cart := &Cart{
		Items: []CartLine{
			{ProductID: "p1", Price: 12.50, Quantity: 2},
			{ProductID: "p2", Price: 0.99, Quantity: 3},
		},
	}

	assert.Equal(t, 27.97, cart.Total())
	assert.Equal(t, int64(5), cart.TotalItems())
	assert.False(t, cart.IsEmpty())
}

func TestCart_Empty(t *testing.T) {
	cart := &Cart{UserID: "u1"}

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0.00, cart.Total())
	assert.Equal(t, int64(0), cart.TotalItems())
}
