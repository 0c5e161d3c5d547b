package handlers

import (
    "database/sql"
    "errors"
    "fmt"
    "log"
    "net/http"
    "strconv"

    "github.com/gorilla/mux"

    "supermarket-pos-api/database"
    "supermarket-pos-api/models"
    "supermarket-pos-api/utils"
)

type InventoryHandler struct {
    db *database.Connection
}

func NewInventoryHandler(db *database.Connection) *InventoryHandler {
    return &InventoryHandler{db: db}
}

func (h *InventoryHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
    search := r.URL.Query().Get("search")
    category := r.URL.Query().Get("category")

    var (
        products []models.Product
        err      error
    )
    if search != "" || category != "" {
        products, err = h.db.SearchProducts(search, category)
    } else {
        products, err = h.db.GetProducts()
    }
    if err != nil {
        log.Printf("Error fetching products: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to fetch products")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   products,
    })
}

func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
    id, err := parseIDVar(r, "id")
    if err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
        return
    }

    product, err := h.db.GetProductByID(id)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
            return
        }
        log.Printf("Error fetching product %d: %v", id, err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to fetch product")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   product,
    })
}

func (h *InventoryHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
    var input models.ProductInput
    if err := decodeJSONBody(r, &input); err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
        return
    }

    if input.Name == "" {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Missing required field: name")
        return
    }
    if input.Price == nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Missing required field: price")
        return
    }
    if *input.Price < 0 {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Price cannot be negative")
        return
    }
    if input.StockQuantity != nil && *input.StockQuantity < 0 {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Stock quantity cannot be negative")
        return
    }

    product, err := h.db.CreateProduct(&input)
    if err != nil {
        log.Printf("Error creating product: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to create product")
        return
    }

    utils.SendJSON(w, http.StatusCreated, models.APIResponse{
        Status:  "success",
        Message: "Product created successfully",
        Data:    product,
    })
}

func (h *InventoryHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
    id, err := parseIDVar(r, "id")
    if err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
        return
    }

    var input models.ProductInput
    if err := decodeJSONBody(r, &input); err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
        return
    }
    if input.Price != nil && *input.Price < 0 {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Price cannot be negative")
        return
    }
    if input.StockQuantity != nil && *input.StockQuantity < 0 {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Stock quantity cannot be negative")
        return
    }

    product, err := h.db.UpdateProduct(id, &input)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
            return
        }
        log.Printf("Error updating product %d: %v", id, err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to update product")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status:  "success",
        Message: "Product updated successfully",
        Data:    product,
    })
}

func (h *InventoryHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
    id, err := parseIDVar(r, "id")
    if err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
        return
    }

    if err := h.db.DeleteProduct(id); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
            return
        }
        log.Printf("Error deleting product %d: %v", id, err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to delete product")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status:  "success",
        Message: "Product deleted successfully",
    })
}

func (h *InventoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
    categories, err := h.db.GetCategories()
    if err != nil {
        log.Printf("Error fetching categories: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to fetch categories")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   categories,
    })
}

func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
    var input models.StockMovementInput
    if err := decodeJSONBody(r, &input); err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
        return
    }

    if input.ProductID == 0 {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Missing required field: product_id")
        return
    }
    // Direction comes from the movement type, never from the sign.
    if input.Quantity <= 0 {
        utils.SendErrorResponse(w, http.StatusBadRequest, "Quantity must be greater than zero")
        return
    }
    switch input.MovementType {
    case "in", "out", "adjustment":
    default:
        utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid movement type")
        return
    }

    product, err := h.db.AdjustStock(&input)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
            return
        }
        if errors.Is(err, database.ErrInsufficientStock) {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Insufficient stock for movement")
            return
        }
        log.Printf("Error adjusting stock for product %d: %v", input.ProductID, err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to adjust stock")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status:  "success",
        Message: "Stock adjusted successfully",
        Data:    product,
    })
}

func (h *InventoryHandler) GetStockMovements(w http.ResponseWriter, r *http.Request) {
    var productID int
    if raw := r.URL.Query().Get("product_id"); raw != "" {
        id, err := strconv.Atoi(raw)
        if err != nil {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
            return
        }
        productID = id
    }

    limit := 100
    if raw := r.URL.Query().Get("limit"); raw != "" {
        parsed, err := strconv.Atoi(raw)
        if err != nil || parsed < 1 || parsed > 500 {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid limit")
            return
        }
        limit = parsed
    }

    movements, err := h.db.GetStockMovements(productID, limit)
    if err != nil {
        log.Printf("Error fetching stock movements: %v", err)
        utils.SendErrorResponse(w, http.StatusInternalServerError, "Failed to fetch stock movements")
        return
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status: "success",
        Data:   movements,
    })
}

func parseIDVar(r *http.Request, name string) (int, error) {
    id, err := strconv.Atoi(mux.Vars(r)[name])
    if err != nil || id < 1 {
        return 0, fmt.Errorf("invalid %s", name)
    }
    return id, nil
}
