package models

import "time"

// PaymentRequest carries the caller-supplied fields for an STK push.
// PhoneNumber must be in the 254XXXXXXXXX format expected by the gateway.
type PaymentRequest struct {
    PhoneNumber string  `json:"phone_number"`
    Amount      float64 `json:"amount"`
    Reference   string  `json:"reference"`
    Description string  `json:"description"`
}

// MpesaPayment links a CheckoutRequestID to the sale it is paying for.
// Status is one of 'pending', 'completed', 'failed'.
type MpesaPayment struct {
    ID                int       `json:"id"`
    CheckoutRequestID string    `json:"checkout_request_id"`
    MerchantRequestID string    `json:"merchant_request_id"`
    Reference         string    `json:"reference"`
    PhoneNumber       string    `json:"phone_number"`
    Amount            float64   `json:"amount"`
    Status            string    `json:"status"`
    ReceiptNumber     string    `json:"receipt_number"`
    ResultDesc        string    `json:"result_desc"`
    Simulation        bool      `json:"simulation"`
    CreatedAt         time.Time `json:"created_at"`
    UpdatedAt         time.Time `json:"updated_at"`
}
