package models

import "time"

type Transaction struct {
    ID               int               `json:"id"`
    ReferenceNumber  string            `json:"reference_number"`
    TransactionDate  time.Time         `json:"transaction_date"`
    TotalAmount      float64           `json:"total_amount"`
    PaymentMethod    string            `json:"payment_method"`
    PaymentReference string            `json:"payment_reference"`
    CashierName      string            `json:"cashier_name"`
    Items            []TransactionItem `json:"items"`
}

type TransactionItem struct {
    ID          int     `json:"id"`
    ProductID   int     `json:"product_id"`
    ProductName string  `json:"product_name"`
    Quantity    int     `json:"quantity"`
    UnitPrice   float64 `json:"unit_price"`
    TotalPrice  float64 `json:"total_price"`
}

// SaleRequest is the payload for completing a sale at the register.
type SaleRequest struct {
    Items            []SaleItem `json:"items"`
    TotalAmount      float64    `json:"total_amount"`
    PaymentMethod    string     `json:"payment_method"`
    PaymentReference string     `json:"payment_reference"`
    CashierName      string     `json:"cashier_name"`
}

type SaleItem struct {
    ProductID int `json:"product_id"`
    Quantity  int `json:"quantity"`
}

type StockMovement struct {
    ID           int       `json:"id"`
    ProductID    int       `json:"product_id"`
    ProductName  string    `json:"product_name"`
    MovementDate time.Time `json:"movement_date"`
    Quantity     int       `json:"quantity"`
    MovementType string    `json:"movement_type"` // 'in', 'out', 'adjustment'
    Reference    string    `json:"reference"`
    Notes        string    `json:"notes"`
}

type StockMovementInput struct {
    ProductID    int    `json:"product_id"`
    Quantity     int    `json:"quantity"`
    MovementType string `json:"movement_type"`
    Reference    string `json:"reference"`
    Notes        string `json:"notes"`
}
