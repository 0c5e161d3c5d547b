package models

import "time"

type ReportPeriod struct {
    Start time.Time `json:"start"`
    End   time.Time `json:"end"`
    Name  string    `json:"name"`
}

type SalesSummary struct {
    TotalTransactions int     `json:"total_transactions"`
    TotalSales        float64 `json:"total_sales"`
    AverageSale       float64 `json:"average_sale"`
}

type PaymentMethodSales struct {
    Method string  `json:"method"`
    Count  int     `json:"count"`
    Total  float64 `json:"total"`
}

type CategorySales struct {
    Category     string  `json:"category"`
    TotalSales   float64 `json:"total_sales"`
    QuantitySold int     `json:"quantity_sold"`
}

type ProductSales struct {
    ID           int     `json:"id"`
    Name         string  `json:"name"`
    Category     string  `json:"category"`
    QuantitySold int     `json:"quantity_sold,omitempty"`
    TotalRevenue float64 `json:"total_revenue,omitempty"`
}

type InventorySummary struct {
    TotalProducts int     `json:"total_products"`
    OutOfStock    int     `json:"out_of_stock"`
    LowStock      int     `json:"low_stock"`
    TotalValue    float64 `json:"total_value"`
}
