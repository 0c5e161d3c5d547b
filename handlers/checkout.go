package handlers

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strconv"
    "time"

    "supermarket-pos-api/database"
    "supermarket-pos-api/models"
    "supermarket-pos-api/queue"
    "supermarket-pos-api/utils"
)

// lowStockThreshold is the shelf quantity at or below which a sale
// triggers a restock alert for the product.
const lowStockThreshold = 10

type CheckoutHandler struct {
    db    *database.Connection
    queue *queue.Queue
}

func NewCheckoutHandler(db *database.Connection, q *queue.Queue) *CheckoutHandler {
    return &CheckoutHandler{db: db, queue: q}
}

// SearchProducts is the register-side product lookup: free text over
// name/barcode/description plus an optional category filter.
func (h *CheckoutHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()

    products, err := h.db.SearchProducts(q.Get("q"), q.Get("category"))
    if err != nil {
        log.Printf("Error searching products: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to search products")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   products,
    })
}

// CreateSale completes a sale: one transaction row, one item row and one
// stock movement per line, all inside a single database transaction.
func (h *CheckoutHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
    var req models.SaleRequest
    if err := decodeJSONBody(r, &req); err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
        return
    }

    if len(req.Items) == 0 {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Sale must contain at least one item")
        return
    }
    switch req.PaymentMethod {
    case "cash", "card", "mpesa":
    default:
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid payment method")
        return
    }
    for _, item := range req.Items {
        if item.ProductID < 1 || item.Quantity < 1 {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid sale item")
            return
        }
    }

    // Price every line from the catalog; the client total is not trusted.
    total := 0.0
    lines := make([]models.TransactionItem, 0, len(req.Items))
    for _, item := range req.Items {
        product, err := h.db.GetProductByID(item.ProductID)
        if err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                utils.SendErrorResponse(w, http.StatusBadRequest,
                    fmt.Sprintf("Product %d not found", item.ProductID))
                return
            }
            log.Printf("Error loading product %d: %v", item.ProductID, err)
            utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to process sale")
            return
        }

        lineTotal := utils.Round(product.Price * float64(item.Quantity))
        total += lineTotal
        lines = append(lines, models.TransactionItem{
            ProductID:  product.ID,
            Quantity:   item.Quantity,
            UnitPrice:  product.Price,
            TotalPrice: lineTotal,
        })
    }
    total = utils.Round(total)

    reference := utils.GenerateReference()
    sale := &models.Transaction{
        ReferenceNumber:  reference,
        TotalAmount:      total,
        PaymentMethod:    req.PaymentMethod,
        PaymentReference: req.PaymentReference,
        CashierName:      req.CashierName,
    }

    tx, err := h.db.BeginSale()
    if err != nil {
        log.Printf("Error starting sale transaction: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to process sale")
        return
    }

    transactionID, err := tx.SaveTransaction(sale)
    if err != nil {
        tx.Rollback()
        log.Printf("Error saving sale: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to process sale")
        return
    }

    for _, line := range lines {
        if err := tx.DecrementStock(line.ProductID, line.Quantity); err != nil {
            tx.Rollback()
            if errors.Is(err, database.ErrInsufficientStock) {
                utils.SendErrorResponse(w, http.StatusBadRequest,
                    fmt.Sprintf("Insufficient stock for product %d", line.ProductID))
                return
            }
            log.Printf("Error decrementing stock: %v", err)
            utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to process sale")
            return
        }
        if err := tx.SaveTransactionItem(transactionID, &line); err != nil {
            tx.Rollback()
            log.Printf("Error saving sale item: %v", err)
            utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to process sale")
            return
        }
        if err := tx.SaveStockMovement(line.ProductID, line.Quantity, reference); err != nil {
            tx.Rollback()
            log.Printf("Error saving stock movement: %v", err)
            utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to process sale")
            return
        }
    }

    if err := tx.Commit(); err != nil {
        log.Printf("Error committing sale: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to process sale")
        return
    }

    log.Printf("Sale %s completed: %.2f via %s", reference, total, req.PaymentMethod)

    h.flagLowStock(lines)

    saved, err := h.db.GetTransactionByID(transactionID)
    if err != nil {
        // The sale went through; fall back to what we already know.
        log.Printf("Error reloading sale %d: %v", transactionID, err)
        sale.ID = transactionID
        sale.Items = lines
        saved = sale
    }

    utils.SendJSON(w, http.StatusCreated, models.APIResponse{
        Status:  "success",
        Message: "Sale completed successfully",
        Data:    saved,
    })
}

// flagLowStock enqueues a restock alert for any sold product now at or
// below the threshold. Alert failures never fail the sale.
func (h *CheckoutHandler) flagLowStock(lines []models.TransactionItem) {
    var lowIDs []interface{}
    for _, line := range lines {
        product, err := h.db.GetProductByID(line.ProductID)
        if err != nil {
            log.Printf("Error checking stock level for product %d: %v", line.ProductID, err)
            continue
        }
        if product.StockQuantity <= lowStockThreshold {
            lowIDs = append(lowIDs, product.ID)
        }
    }
    if len(lowIDs) == 0 {
        return
    }

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    err := h.queue.Enqueue(ctx, queue.JobTypeLowStockAlert, map[string]interface{}{
        "product_ids": lowIDs,
        "threshold":   lowStockThreshold,
    })
    if err != nil {
        log.Printf("Error enqueueing low stock alert: %v", err)
    }
}

func (h *CheckoutHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
    id, err := parseIDVar(r, "id")
    if err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid transaction ID")
        return
    }

    sale, err := h.db.GetTransactionByID(id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            utils.SendErrorResponse(w, http.StatusNotFound, "Transaction not found")
            return
        }
        log.Printf("Error fetching transaction %d: %v", id, err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to fetch transaction")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   sale,
    })
}

func (h *CheckoutHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
    limit := 50
    if raw := r.URL.Query().Get("limit"); raw != "" {
        parsed, err := strconv.Atoi(raw)
        if err != nil || parsed < 1 || parsed > 200 {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid limit")
            return
        }
        limit = parsed
    }

    sales, err := h.db.GetRecentTransactions(limit)
    if err != nil {
        log.Printf("Error fetching transactions: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to fetch transactions")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   sales,
    })
}
