package email

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "supermarket-pos-api/models"
)

func TestBuildPaymentReceipt(t *testing.T) {
    payment := &models.MpesaPayment{
        Reference:     "TRX-492817",
        ReceiptNumber: "NLJ7RT61SV",
        Amount:        350.50,
        PhoneNumber:   "254708374149",
        Status:        "completed",
    }
    sale := &models.Transaction{
        ReferenceNumber: "TRX-492817",
        TotalAmount:     350.50,
        Items: []models.TransactionItem{
            {ProductName: "Milk 500ml", Quantity: 2, UnitPrice: 60, TotalPrice: 120},
            {ProductName: "Bread", Quantity: 1, UnitPrice: 230.50, TotalPrice: 230.50},
        },
    }

    body := BuildPaymentReceipt(payment, sale)

    assert.Contains(t, body, "TRX-492817")
    assert.Contains(t, body, "NLJ7RT61SV")
    assert.Contains(t, body, "KES 350.50")
    assert.Contains(t, body, "254708374149")
    assert.Contains(t, body, "Milk 500ml")
    assert.Contains(t, body, "Bread")
}

func TestBuildPaymentReceiptWithoutSale(t *testing.T) {
    payment := &models.MpesaPayment{
        Reference:     "TRX-000001",
        ReceiptNumber: "QBC1DE23FG",
        Amount:        100,
        PhoneNumber:   "254712345678",
    }

    body := BuildPaymentReceipt(payment, nil)

    assert.Contains(t, body, "QBC1DE23FG")
    assert.NotContains(t, body, "<table")
}

func TestBuildLowStockAlert(t *testing.T) {
    body := BuildLowStockAlert([]models.Product{
        {Barcode: "6001087340093", Name: "Sugar 1kg", Category: "Groceries", StockQuantity: 3},
    })

    assert.Contains(t, body, "Sugar 1kg")
    assert.Contains(t, body, "6001087340093")
    assert.Contains(t, body, "Low stock alert")
}
