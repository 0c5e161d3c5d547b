package database

import (
    "context"
    "fmt"
    "time"

    "supermarket-pos-api/models"
)

// SaveMpesaPayment stores a pending payment keyed by the CheckoutRequestID
// returned from the STK push, so the later callback or status poll can find
// the sale it belongs to.
func (c *Connection) SaveMpesaPayment(p *models.MpesaPayment) error {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    _, err := c.db.ExecContext(ctx, `
        INSERT INTO mpesa_payments (checkout_request_id, merchant_request_id, reference,
                                    phone_number, amount, status, simulation, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, 'pending', ?, NOW(), NOW())
    `, p.CheckoutRequestID, p.MerchantRequestID, p.Reference,
        p.PhoneNumber, p.Amount, p.Simulation)
    if err != nil {
        return fmt.Errorf("error saving mpesa payment: %v", err)
    }
    return nil
}

func (c *Connection) GetMpesaPayment(checkoutRequestID string) (*models.MpesaPayment, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    var p models.MpesaPayment
    err := c.db.QueryRowContext(ctx, `
        SELECT id, checkout_request_id, merchant_request_id, reference, phone_number,
               amount, status, COALESCE(receipt_number, ''), COALESCE(result_desc, ''),
               simulation, created_at, updated_at
        FROM mpesa_payments
        WHERE checkout_request_id = ?
    `, checkoutRequestID).Scan(&p.ID, &p.CheckoutRequestID, &p.MerchantRequestID,
        &p.Reference, &p.PhoneNumber, &p.Amount, &p.Status, &p.ReceiptNumber,
        &p.ResultDesc, &p.Simulation, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &p, nil
}

// CompleteMpesaPayment marks the payment settled and records the gateway
// receipt. Only pending rows transition, so a duplicated callback is a no-op.
func (c *Connection) CompleteMpesaPayment(checkoutRequestID, receiptNumber, resultDesc string) (bool, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    result, err := c.db.ExecContext(ctx, `
        UPDATE mpesa_payments
        SET status = 'completed', receipt_number = ?, result_desc = ?, updated_at = NOW()
        WHERE checkout_request_id = ? AND status = 'pending'
    `, receiptNumber, resultDesc, checkoutRequestID)
    if err != nil {
        return false, fmt.Errorf("error completing mpesa payment: %v", err)
    }

    rows, err := result.RowsAffected()
    if err != nil {
        return false, err
    }
    return rows > 0, nil
}

func (c *Connection) FailMpesaPayment(checkoutRequestID, resultDesc string) (bool, error) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    result, err := c.db.ExecContext(ctx, `
        UPDATE mpesa_payments
        SET status = 'failed', result_desc = ?, updated_at = NOW()
        WHERE checkout_request_id = ? AND status = 'pending'
    `, resultDesc, checkoutRequestID)
    if err != nil {
        return false, fmt.Errorf("error failing mpesa payment: %v", err)
    }

    rows, err := result.RowsAffected()
    if err != nil {
        return false, err
    }
    return rows > 0, nil
}
