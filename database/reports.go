package database

import (
    "context"
    "database/sql"
    "fmt"
    "time"

    "supermarket-pos-api/models"
)

func (c *Connection) GetSalesSummary(start, end time.Time) (*models.SalesSummary, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    var summary models.SalesSummary
    var totalSales, averageSale sql.NullFloat64
    err := c.db.QueryRowContext(ctx, `
        SELECT COUNT(id), SUM(total_amount), AVG(total_amount)
        FROM transactions
        WHERE transaction_date BETWEEN ? AND ?
    `, start, end).Scan(&summary.TotalTransactions, &totalSales, &averageSale)
    if err != nil {
        return nil, fmt.Errorf("error generating sales summary: %v", err)
    }

    summary.TotalSales = totalSales.Float64
    summary.AverageSale = averageSale.Float64
    return &summary, nil
}

func (c *Connection) GetPaymentMethodBreakdown(start, end time.Time) ([]models.PaymentMethodSales, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    rows, err := c.db.QueryContext(ctx, `
        SELECT payment_method, COUNT(id), SUM(total_amount)
        FROM transactions
        WHERE transaction_date BETWEEN ? AND ?
        GROUP BY payment_method
    `, start, end)
    if err != nil {
        return nil, fmt.Errorf("error generating payment breakdown: %v", err)
    }
    defer rows.Close()

    var breakdown []models.PaymentMethodSales
    for rows.Next() {
        var entry models.PaymentMethodSales
        var total sql.NullFloat64
        if err := rows.Scan(&entry.Method, &entry.Count, &total); err != nil {
            return nil, err
        }
        entry.Total = total.Float64
        breakdown = append(breakdown, entry)
    }

    return breakdown, rows.Err()
}

func (c *Connection) GetSalesByCategory(start, end time.Time) ([]models.CategorySales, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    rows, err := c.db.QueryContext(ctx, `
        SELECT p.category, SUM(ti.total_price), SUM(ti.quantity)
        FROM products p
        JOIN transaction_items ti ON ti.product_id = p.id
        JOIN transactions t ON t.id = ti.transaction_id
        WHERE t.transaction_date BETWEEN ? AND ?
        GROUP BY p.category
    `, start, end)
    if err != nil {
        return nil, fmt.Errorf("error generating category sales: %v", err)
    }
    defer rows.Close()

    var sales []models.CategorySales
    for rows.Next() {
        var entry models.CategorySales
        var total sql.NullFloat64
        var quantity sql.NullInt64
        if err := rows.Scan(&entry.Category, &total, &quantity); err != nil {
            return nil, err
        }
        entry.TotalSales = total.Float64
        entry.QuantitySold = int(quantity.Int64)
        sales = append(sales, entry)
    }

    return sales, rows.Err()
}

func (c *Connection) GetTopProductsByQuantity(start, end time.Time, limit int) ([]models.ProductSales, error) {
    return c.topProducts(start, end, limit, `SUM(ti.quantity)`, true)
}

func (c *Connection) GetTopProductsByRevenue(start, end time.Time, limit int) ([]models.ProductSales, error) {
    return c.topProducts(start, end, limit, `SUM(ti.total_price)`, false)
}

func (c *Connection) topProducts(start, end time.Time, limit int, metric string, byQuantity bool) ([]models.ProductSales, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    query := fmt.Sprintf(`
        SELECT p.id, p.name, p.category, %s AS metric
        FROM products p
        JOIN transaction_items ti ON ti.product_id = p.id
        JOIN transactions t ON t.id = ti.transaction_id
        WHERE t.transaction_date BETWEEN ? AND ?
        GROUP BY p.id, p.name, p.category
        ORDER BY metric DESC
        LIMIT ?
    `, metric)

    rows, err := c.db.QueryContext(ctx, query, start, end, limit)
    if err != nil {
        return nil, fmt.Errorf("error generating top products: %v", err)
    }
    defer rows.Close()

    var products []models.ProductSales
    for rows.Next() {
        var entry models.ProductSales
        var metricValue sql.NullFloat64
        if err := rows.Scan(&entry.ID, &entry.Name, &entry.Category, &metricValue); err != nil {
            return nil, err
        }
        if byQuantity {
            entry.QuantitySold = int(metricValue.Float64)
        } else {
            entry.TotalRevenue = metricValue.Float64
        }
        products = append(products, entry)
    }

    return products, rows.Err()
}

// GetInventoryStatus aggregates counts and value over all products and
// returns the low-stock and out-of-stock lists.
func (c *Connection) GetInventoryStatus(lowStockThreshold int) (*models.InventorySummary, []models.Product, []models.Product, error) {
    products, err := c.GetProducts()
    if err != nil {
        return nil, nil, nil, err
    }

    summary := &models.InventorySummary{TotalProducts: len(products)}
    var lowStock, outOfStock []models.Product

    for _, p := range products {
        summary.TotalValue += p.Price * float64(p.StockQuantity)
        switch {
        case p.StockQuantity <= 0:
            summary.OutOfStock++
            outOfStock = append(outOfStock, p)
        case p.StockQuantity <= lowStockThreshold:
            summary.LowStock++
            lowStock = append(lowStock, p)
        }
    }

    return summary, lowStock, outOfStock, nil
}
