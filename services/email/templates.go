package email

import (
    "fmt"
    "strings"

    "supermarket-pos-api/models"
)

// BuildPaymentReceipt renders the settlement receipt mailed once an M-PESA
// payment is confirmed. The sale may be nil when the reference no longer
// resolves; the payment details alone still make a usable receipt.
func BuildPaymentReceipt(payment *models.MpesaPayment, sale *models.Transaction) string {
    var items strings.Builder
    if sale != nil {
        for _, item := range sale.Items {
            items.WriteString(fmt.Sprintf(
                "<tr><td>%s</td><td>%d</td><td>%.2f</td><td>%.2f</td></tr>",
                item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice))
        }
    }

    var itemsTable string
    if items.Len() > 0 {
        itemsTable = fmt.Sprintf(`
            <table border="1" cellpadding="6" cellspacing="0">
                <tr><th>Product</th><th>Qty</th><th>Unit price</th><th>Total</th></tr>
                %s
            </table>`, items.String())
    }

    return fmt.Sprintf(`
        <html>
        <body>
            <h2>Payment receipt</h2>
            <p>Payment for sale <strong>%s</strong> has been confirmed.</p>
            <p>
                M-PESA receipt: <strong>%s</strong><br>
                Amount: KES %.2f<br>
                Phone: %s
            </p>
            %s
        </body>
        </html>
    `, payment.Reference, payment.ReceiptNumber, payment.Amount, payment.PhoneNumber, itemsTable)
}

// BuildLowStockAlert renders the restock notification sent to the store
// mailbox when sold products fall below the threshold.
func BuildLowStockAlert(products []models.Product) string {
    var rows strings.Builder
    for _, p := range products {
        rows.WriteString(fmt.Sprintf(
            "<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>",
            p.Barcode, p.Name, p.Category, p.StockQuantity))
    }

    return fmt.Sprintf(`
        <html>
        <body>
            <h2>Low stock alert</h2>
            <p>The following products are running low and may need restocking:</p>
            <table border="1" cellpadding="6" cellspacing="0">
                <tr><th>Barcode</th><th>Product</th><th>Category</th><th>Remaining</th></tr>
                %s
            </table>
        </body>
        </html>
    `, rows.String())
}
