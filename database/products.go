package database

import (
    "context"
    "database/sql"
    "fmt"
    "log"
    "time"

    "supermarket-pos-api/models"
)

const productColumns = `id, barcode, name, description, price, cost_price,
       category, stock_quantity, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
    var p models.Product
    var description sql.NullString
    err := row.Scan(
        &p.ID,
        &p.Barcode,
        &p.Name,
        &description,
        &p.Price,
        &p.CostPrice,
        &p.Category,
        &p.StockQuantity,
        &p.CreatedAt,
        &p.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    p.Description = description.String
    return &p, nil
}

func (c *Connection) GetProducts() ([]models.Product, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    rows, err := c.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY name ASC`)
    if err != nil {
        return nil, fmt.Errorf("error fetching products: %v", err)
    }
    defer rows.Close()

    var products []models.Product
    for rows.Next() {
        p, err := scanProduct(rows)
        if err != nil {
            return nil, err
        }
        products = append(products, *p)
    }

    return products, rows.Err()
}

func (c *Connection) GetProductByID(id int) (*models.Product, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    return scanProduct(c.db.QueryRowContext(ctx,
        `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
}

// SearchProducts filters by a free-text term over name/barcode/description
// and optionally by category. Empty arguments match everything.
func (c *Connection) SearchProducts(term, category string) ([]models.Product, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
    var args []interface{}

    if term != "" {
        query += ` AND (name LIKE ? OR barcode LIKE ? OR description LIKE ?)`
        like := "%" + term + "%"
        args = append(args, like, like, like)
    }
    if category != "" {
        query += ` AND category = ?`
        args = append(args, category)
    }
    query += ` ORDER BY name ASC`

    rows, err := c.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, fmt.Errorf("error searching products: %v", err)
    }
    defer rows.Close()

    var products []models.Product
    for rows.Next() {
        p, err := scanProduct(rows)
        if err != nil {
            return nil, err
        }
        products = append(products, *p)
    }

    return products, rows.Err()
}

func (c *Connection) CreateProduct(input *models.ProductInput) (*models.Product, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    stock := 0
    if input.StockQuantity != nil {
        stock = *input.StockQuantity
    }
    costPrice := 0.0
    if input.CostPrice != nil {
        costPrice = *input.CostPrice
    }

    result, err := c.db.ExecContext(ctx, `
        INSERT INTO products (barcode, name, description, price, cost_price, category, stock_quantity, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
    `, input.Barcode, input.Name, input.Description, *input.Price, costPrice, input.Category, stock)
    if err != nil {
        return nil, fmt.Errorf("error adding product: %v", err)
    }

    id, err := result.LastInsertId()
    if err != nil {
        return nil, fmt.Errorf("error getting product id: %v", err)
    }

    // Initial stock is recorded as an "in" movement so the history starts
    // at the real quantity.
    if stock > 0 {
        if err := c.InsertStockMovement(int(id), stock, "in", "Initial Stock",
            "Initial stock upon product creation"); err != nil {
            log.Printf("Warning: failed to record initial stock movement for product %d: %v", id, err)
        }
    }

    return c.GetProductByID(int(id))
}

func (c *Connection) UpdateProduct(id int, input *models.ProductInput) (*models.Product, error) {
    current, err := c.GetProductByID(id)
    if err != nil {
        return nil, err
    }

    if input.Barcode != "" {
        current.Barcode = input.Barcode
    }
    if input.Name != "" {
        current.Name = input.Name
    }
    if input.Description != "" {
        current.Description = input.Description
    }
    if input.Price != nil {
        current.Price = *input.Price
    }
    if input.CostPrice != nil {
        current.CostPrice = *input.CostPrice
    }
    if input.Category != "" {
        current.Category = input.Category
    }

    oldStock := current.StockQuantity
    if input.StockQuantity != nil {
        current.StockQuantity = *input.StockQuantity
    }

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    _, err = c.db.ExecContext(ctx, `
        UPDATE products
        SET barcode = ?, name = ?, description = ?, price = ?, cost_price = ?,
            category = ?, stock_quantity = ?, updated_at = NOW()
        WHERE id = ?
    `, current.Barcode, current.Name, current.Description, current.Price,
        current.CostPrice, current.Category, current.StockQuantity, id)
    if err != nil {
        return nil, fmt.Errorf("error updating product %d: %v", id, err)
    }

    if current.StockQuantity != oldStock {
        quantity := current.StockQuantity - oldStock
        movementType := "in"
        if quantity < 0 {
            movementType = "out"
        }
        notes := fmt.Sprintf("Stock adjusted from %d to %d", oldStock, current.StockQuantity)
        if err := c.InsertStockMovement(id, quantity, movementType, "Stock Adjustment", notes); err != nil {
            log.Printf("Warning: failed to record stock adjustment for product %d: %v", id, err)
        }
    }

    return current, nil
}

func (c *Connection) DeleteProduct(id int) error {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    result, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
    if err != nil {
        return fmt.Errorf("error deleting product %d: %v", id, err)
    }

    rows, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if rows == 0 {
        return sql.ErrNoRows
    }
    return nil
}

func (c *Connection) GetCategories() ([]string, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT category FROM products ORDER BY category ASC`)
    if err != nil {
        return nil, fmt.Errorf("error fetching categories: %v", err)
    }
    defer rows.Close()

    var categories []string
    for rows.Next() {
        var category string
        if err := rows.Scan(&category); err != nil {
            return nil, err
        }
        categories = append(categories, category)
    }

    return categories, rows.Err()
}

// InsertStockMovement records one movement row. The signed quantity
// convention follows sales: negative for stock leaving the shelf.
func (c *Connection) InsertStockMovement(productID, quantity int, movementType, reference, notes string) error {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    _, err := c.db.ExecContext(ctx, `
        INSERT INTO stock_movements (product_id, movement_date, quantity, movement_type, reference, notes)
        VALUES (?, NOW(), ?, ?, ?, ?)
    `, productID, quantity, movementType, reference, notes)
    if err != nil {
        return fmt.Errorf("error adding stock movement: %v", err)
    }
    return nil
}

// AdjustStock applies a manual movement to the product quantity and
// records it. The quantity update runs first so an over-draw never
// leaves a movement row behind.
func (c *Connection) AdjustStock(input *models.StockMovementInput) (*models.Product, error) {
    quantity := input.Quantity
    if input.MovementType == "out" {
        quantity = -quantity
    }

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    result, err := c.db.ExecContext(ctx, `
        UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = NOW()
        WHERE id = ? AND stock_quantity + ? >= 0
    `, quantity, input.ProductID, quantity)
    if err != nil {
        return nil, fmt.Errorf("error updating product stock: %v", err)
    }
    rows, err := result.RowsAffected()
    if err != nil {
        return nil, err
    }
    if rows == 0 {
        if _, err := c.GetProductByID(input.ProductID); err != nil {
            return nil, err
        }
        return nil, fmt.Errorf("%w for product %d", ErrInsufficientStock, input.ProductID)
    }

    if err := c.InsertStockMovement(input.ProductID, quantity, input.MovementType, input.Reference, input.Notes); err != nil {
        return nil, err
    }

    return c.GetProductByID(input.ProductID)
}

// GetStockMovements returns the most recent movements, optionally
// restricted to one product. productID of zero means all products.
func (c *Connection) GetStockMovements(productID, limit int) ([]models.StockMovement, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    query := `
        SELECT sm.id, sm.product_id, COALESCE(p.name, 'Unknown'), sm.movement_date,
               sm.quantity, sm.movement_type, COALESCE(sm.reference, ''), COALESCE(sm.notes, '')
        FROM stock_movements sm
        LEFT JOIN products p ON p.id = sm.product_id
    `
    args := []interface{}{}
    if productID > 0 {
        query += ` WHERE sm.product_id = ?`
        args = append(args, productID)
    }
    query += ` ORDER BY sm.movement_date DESC LIMIT ?`
    args = append(args, limit)

    rows, err := c.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, fmt.Errorf("error fetching stock movements: %v", err)
    }
    defer rows.Close()

    var movements []models.StockMovement
    for rows.Next() {
        var m models.StockMovement
        err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.MovementDate,
            &m.Quantity, &m.MovementType, &m.Reference, &m.Notes)
        if err != nil {
            return nil, err
        }
        movements = append(movements, m)
    }

    return movements, rows.Err()
}
