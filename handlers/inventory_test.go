package handlers

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "supermarket-pos-api/models"
)

func postStockMovement(t *testing.T, body string) *httptest.ResponseRecorder {
    t.Helper()

    h := &InventoryHandler{}
    req := httptest.NewRequest("POST", "/api/inventory/stock-movements", strings.NewReader(body))
    rec := httptest.NewRecorder()

    h.AdjustStock(rec, req)
    return rec
}

func TestAdjustStockRejectsNonPositiveQuantity(t *testing.T) {
    cases := map[string]string{
        "negative in":   `{"product_id": 1, "quantity": -5, "movement_type": "in"}`,
        "negative out":  `{"product_id": 1, "quantity": -5, "movement_type": "out"}`,
        "zero quantity": `{"product_id": 1, "quantity": 0, "movement_type": "in"}`,
    }

    for name, body := range cases {
        t.Run(name, func(t *testing.T) {
            rec := postStockMovement(t, body)

            assert.Equal(t, http.StatusBadRequest, rec.Code)

            var resp models.APIResponse
            require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
            assert.Equal(t, "error", resp.Status)
            assert.Contains(t, resp.Message, "Quantity")
        })
    }
}

func TestAdjustStockRejectsUnknownMovementType(t *testing.T) {
    rec := postStockMovement(t, `{"product_id": 1, "quantity": 5, "movement_type": "transfer"}`)

    assert.Equal(t, http.StatusBadRequest, rec.Code)

    var resp models.APIResponse
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Contains(t, resp.Message, "movement type")
}

func TestAdjustStockRequiresProductID(t *testing.T) {
    rec := postStockMovement(t, `{"quantity": 5, "movement_type": "in"}`)

    assert.Equal(t, http.StatusBadRequest, rec.Code)

    var resp models.APIResponse
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Contains(t, resp.Message, "product_id")
}
