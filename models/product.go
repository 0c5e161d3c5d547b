package models

import "time"

type Product struct {
    ID            int       `json:"id"`
    Barcode       string    `json:"barcode"`
    Name          string    `json:"name"`
    Description   string    `json:"description"`
    Price         float64   `json:"price"`
    CostPrice     float64   `json:"-"`
    Category      string    `json:"category"`
    StockQuantity int       `json:"stock_quantity"`
    CreatedAt     time.Time `json:"-"`
    UpdatedAt     time.Time `json:"-"`
}

type ProductInput struct {
    Barcode       string   `json:"barcode"`
    Name          string   `json:"name"`
    Description   string   `json:"description"`
    Price         *float64 `json:"price"`
    CostPrice     *float64 `json:"cost_price"`
    Category      string   `json:"category"`
    StockQuantity *int     `json:"stock_quantity"`
}
