package handlers

import (
    "errors"
    "log"
    "net/http"
    "strconv"

    "supermarket-pos-api/database"
    "supermarket-pos-api/models"
    "supermarket-pos-api/utils"
)

type ReportsHandler struct {
    db *database.Connection
}

func NewReportsHandler(db *database.Connection) *ReportsHandler {
    return &ReportsHandler{db: db}
}

// SalesSummary reports totals, the payment method split and the category
// split for the requested period.
func (h *ReportsHandler) SalesSummary(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    start, end, err := utils.ResolvePeriod(q.Get("period"), q.Get("start_date"), q.Get("end_date"))
    if err != nil {
        if errors.Is(err, utils.ErrInvalidDateRange) {
            utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
            return
        }
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid reporting period")
        return
    }

    summary, err := h.db.GetSalesSummary(start, end)
    if err != nil {
        log.Printf("Error generating sales summary: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate sales summary")
        return
    }

    byMethod, err := h.db.GetPaymentMethodBreakdown(start, end)
    if err != nil {
        log.Printf("Error generating payment breakdown: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate sales summary")
        return
    }

    byCategory, err := h.db.GetSalesByCategory(start, end)
    if err != nil {
        log.Printf("Error generating category breakdown: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate sales summary")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data: map[string]interface{}{
            "period": map[string]string{
                "start": start.Format("2006-01-02 15:04:05"),
                "end":   end.Format("2006-01-02 15:04:05"),
            },
            "summary":           summary,
            "by_payment_method": byMethod,
            "by_category":       byCategory,
        },
    })
}

// SalesByCategory breaks the period's revenue and quantity down per
// product category.
func (h *ReportsHandler) SalesByCategory(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    start, end, err := utils.ResolvePeriod(q.Get("period"), q.Get("start_date"), q.Get("end_date"))
    if err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
        return
    }

    byCategory, err := h.db.GetSalesByCategory(start, end)
    if err != nil {
        log.Printf("Error generating category breakdown: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate category breakdown")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data: map[string]interface{}{
            "period": map[string]string{
                "start": start.Format("2006-01-02 15:04:05"),
                "end":   end.Format("2006-01-02 15:04:05"),
            },
            "by_category": byCategory,
        },
    })
}

// TopProducts lists the best sellers for the period, ranked by quantity
// or by revenue.
func (h *ReportsHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    start, end, err := utils.ResolvePeriod(q.Get("period"), q.Get("start_date"), q.Get("end_date"))
    if err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
        return
    }

    limit := 10
    if raw := q.Get("limit"); raw != "" {
        parsed, err := strconv.Atoi(raw)
        if err != nil || parsed < 1 || parsed > 100 {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid limit")
            return
        }
        limit = parsed
    }

    var products []models.ProductSales
    metric := q.Get("by")
    switch metric {
    case "", "quantity":
        metric = "quantity"
        products, err = h.db.GetTopProductsByQuantity(start, end, limit)
    case "revenue":
        products, err = h.db.GetTopProductsByRevenue(start, end, limit)
    default:
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid ranking metric")
        return
    }
    if err != nil {
        log.Printf("Error generating top products: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate top products")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data: map[string]interface{}{
            "ranked_by": metric,
            "products":  products,
        },
    })
}

// InventoryStatus reports stock counts and value plus the low and out of
// stock product lists.
func (h *ReportsHandler) InventoryStatus(w http.ResponseWriter, r *http.Request) {
    threshold := lowStockThreshold
    if raw := r.URL.Query().Get("threshold"); raw != "" {
        parsed, err := strconv.Atoi(raw)
        if err != nil || parsed < 0 {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid threshold")
            return
        }
        threshold = parsed
    }

    summary, lowStock, outOfStock, err := h.db.GetInventoryStatus(threshold)
    if err != nil {
        log.Printf("Error generating inventory status: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate inventory status")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data: map[string]interface{}{
            "summary":      summary,
            "low_stock":    lowStock,
            "out_of_stock": outOfStock,
        },
    })
}
