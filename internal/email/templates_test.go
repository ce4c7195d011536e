package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5, "5.00"},
		{19.99, "19.99"},
		{999.5, "999.50"},
		{1500, "1,500.00"},
		{150000, "150,000.00"},
		{1234567.89, "1,234,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.in), "formatAmount(%v)", tt.in)
	}
}

func TestBuildPaymentReceiptBody(t *testing.T) {
	body := BuildPaymentReceiptBody("order-1", "ord_abc_1", 1500.00, []OrderItem{
		{ProductID: "p1", Name: "Laptop", Quantity: 1, Price: 1200.00},
		{ProductID: "p2", Quantity: 2, Price: 150.00},
	})

	assert.Contains(t, body, "order-1")
	assert.Contains(t, body, "ord_abc_1")
	assert.Contains(t, body, "Laptop")
	// Nameless items fall back to the product id.
	assert.Contains(t, body, "p2")
	assert.Contains(t, body, "1,500.00")
	assert.Contains(t, body, "1,200.00")
	assert.Contains(t, body, "300.00")
}

func TestBuildContactAlertBody(t *testing.T) {
	body := BuildContactAlertBody("Ada", "ada@example.com", "Broken charger")

	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "ada@example.com")
	assert.Contains(t, body, "Broken charger")
}

func TestBuildReplyNotificationBody(t *testing.T) {
	body := BuildReplyNotificationBody("Broken charger", "We shipped a replacement.")

	assert.Contains(t, body, "Broken charger")
	assert.Contains(t, body, "We shipped a replacement.")
}
