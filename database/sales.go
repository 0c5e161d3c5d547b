package database

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "log"
    "time"

    "supermarket-pos-api/models"
)

// ErrInsufficientStock is returned when a sale or manual movement would
// take a product below zero on the shelf.
var ErrInsufficientStock = errors.New("insufficient stock")

// SaleTx wraps the sql.Tx for a sale so every write lands or none do.
type SaleTx struct {
    tx *sql.Tx
}

func (t *SaleTx) Commit() error {
    return t.tx.Commit()
}

func (t *SaleTx) Rollback() error {
    return t.tx.Rollback()
}

func (t *SaleTx) SaveTransaction(sale *models.Transaction) (int, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    result, err := t.tx.ExecContext(ctx, `
        INSERT INTO transactions (reference_number, transaction_date, total_amount,
                                  payment_method, payment_reference, cashier_name)
        VALUES (?, NOW(), ?, ?, ?, ?)
    `, sale.ReferenceNumber, sale.TotalAmount, sale.PaymentMethod,
        sale.PaymentReference, sale.CashierName)
    if err != nil {
        return 0, fmt.Errorf("failed to save transaction: %v", err)
    }

    id, err := result.LastInsertId()
    if err != nil {
        return 0, fmt.Errorf("failed to get transaction id: %v", err)
    }
    return int(id), nil
}

func (t *SaleTx) SaveTransactionItem(transactionID int, item *models.TransactionItem) error {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    _, err := t.tx.ExecContext(ctx, `
        INSERT INTO transaction_items (transaction_id, product_id, quantity, unit_price, total_price)
        VALUES (?, ?, ?, ?, ?)
    `, transactionID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
    if err != nil {
        return fmt.Errorf("failed to save transaction item: %v", err)
    }
    return nil
}

// SaveStockMovement records the "out" movement for one sold line item.
// Quantity is stored negative, matching the shelf direction.
func (t *SaleTx) SaveStockMovement(productID, quantity int, reference string) error {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    notes := fmt.Sprintf("Sale transaction %s", reference)
    _, err := t.tx.ExecContext(ctx, `
        INSERT INTO stock_movements (product_id, movement_date, quantity, movement_type, reference, notes)
        VALUES (?, NOW(), ?, 'out', ?, ?)
    `, productID, -quantity, reference, notes)
    if err != nil {
        return fmt.Errorf("failed to save stock movement: %v", err)
    }
    return nil
}

// DecrementStock takes quantity off the shelf, guarding against racing
// sales draining the same product below zero.
func (t *SaleTx) DecrementStock(productID, quantity int) error {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    result, err := t.tx.ExecContext(ctx, `
        UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = NOW()
        WHERE id = ? AND stock_quantity >= ?
    `, quantity, productID, quantity)
    if err != nil {
        return fmt.Errorf("failed to update product stock: %v", err)
    }

    rows, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if rows == 0 {
        return fmt.Errorf("%w for product %d", ErrInsufficientStock, productID)
    }
    return nil
}

func (c *Connection) GetTransactionByID(id int) (*models.Transaction, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    var sale models.Transaction
    var paymentReference sql.NullString
    err := c.db.QueryRowContext(ctx, `
        SELECT id, reference_number, transaction_date, total_amount,
               payment_method, payment_reference, cashier_name
        FROM transactions WHERE id = ?
    `, id).Scan(&sale.ID, &sale.ReferenceNumber, &sale.TransactionDate,
        &sale.TotalAmount, &sale.PaymentMethod, &paymentReference, &sale.CashierName)
    if err != nil {
        return nil, err
    }
    sale.PaymentReference = paymentReference.String

    items, err := c.getTransactionItems(ctx, sale.ID)
    if err != nil {
        return nil, err
    }
    sale.Items = items

    return &sale, nil
}

func (c *Connection) GetRecentTransactions(limit int) ([]models.Transaction, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    rows, err := c.db.QueryContext(ctx, `
        SELECT id, reference_number, transaction_date, total_amount,
               payment_method, payment_reference, cashier_name
        FROM transactions
        ORDER BY transaction_date DESC
        LIMIT ?
    `, limit)
    if err != nil {
        return nil, fmt.Errorf("error fetching transactions: %v", err)
    }
    defer rows.Close()

    var sales []models.Transaction
    for rows.Next() {
        var sale models.Transaction
        var paymentReference sql.NullString
        err := rows.Scan(&sale.ID, &sale.ReferenceNumber, &sale.TransactionDate,
            &sale.TotalAmount, &sale.PaymentMethod, &paymentReference, &sale.CashierName)
        if err != nil {
            return nil, err
        }
        sale.PaymentReference = paymentReference.String
        sales = append(sales, sale)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }

    for i := range sales {
        items, err := c.getTransactionItems(ctx, sales[i].ID)
        if err != nil {
            log.Printf("Error fetching items for transaction %d: %v", sales[i].ID, err)
            continue
        }
        sales[i].Items = items
    }

    return sales, nil
}

func (c *Connection) getTransactionItems(ctx context.Context, transactionID int) ([]models.TransactionItem, error) {
    rows, err := c.db.QueryContext(ctx, `
        SELECT ti.id, ti.product_id, COALESCE(p.name, 'Unknown'),
               ti.quantity, ti.unit_price, ti.total_price
        FROM transaction_items ti
        LEFT JOIN products p ON p.id = ti.product_id
        WHERE ti.transaction_id = ?
    `, transactionID)
    if err != nil {
        return nil, fmt.Errorf("error fetching transaction items: %v", err)
    }
    defer rows.Close()

    var items []models.TransactionItem
    for rows.Next() {
        var item models.TransactionItem
        err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName,
            &item.Quantity, &item.UnitPrice, &item.TotalPrice)
        if err != nil {
            return nil, err
        }
        items = append(items, item)
    }

    return items, rows.Err()
}

// GetTransactionByReference looks a sale up by its register reference, the
// key the payment flow carries through initiation and callback.
func (c *Connection) GetTransactionByReference(referenceNumber string) (*models.Transaction, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    var sale models.Transaction
    var paymentReference sql.NullString
    err := c.db.QueryRowContext(ctx, `
        SELECT id, reference_number, transaction_date, total_amount,
               payment_method, payment_reference, cashier_name
        FROM transactions WHERE reference_number = ?
    `, referenceNumber).Scan(&sale.ID, &sale.ReferenceNumber, &sale.TransactionDate,
        &sale.TotalAmount, &sale.PaymentMethod, &paymentReference, &sale.CashierName)
    if err != nil {
        return nil, err
    }
    sale.PaymentReference = paymentReference.String

    items, err := c.getTransactionItems(ctx, sale.ID)
    if err != nil {
        return nil, err
    }
    sale.Items = items

    return &sale, nil
}

// SetPaymentReference stamps the gateway receipt onto the sale once the
// callback confirms payment.
func (c *Connection) SetPaymentReference(referenceNumber, paymentReference string) error {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    _, err := c.db.ExecContext(ctx, `
        UPDATE transactions SET payment_reference = ?
        WHERE reference_number = ?
    `, paymentReference, referenceNumber)
    if err != nil {
        return fmt.Errorf("error updating payment reference: %v", err)
    }
    return nil
}
