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
    "supermarket-pos-api/services/mpesa"
)

func TestHandleCallbackMalformedPayload(t *testing.T) {
    h := &MpesaHandler{}

    req := httptest.NewRequest("POST", "/api/mpesa/callback", strings.NewReader(`{"unexpected": true}`))
    rec := httptest.NewRecorder()

    h.HandleCallback(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)

    var ack mpesa.CallbackAck
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
    assert.Equal(t, 1, ack.ResultCode)
    assert.Equal(t, "Invalid callback data", ack.ResultDesc)
}

func TestInitiatePaymentMissingFields(t *testing.T) {
    h := &MpesaHandler{}

    cases := map[string]string{
        "missing phone":     `{"amount": 100, "reference": "TRX-000001"}`,
        "missing amount":    `{"phone_number": "254712345678", "reference": "TRX-000001"}`,
        "missing reference": `{"phone_number": "254712345678", "amount": 100}`,
    }

    for name, body := range cases {
        t.Run(name, func(t *testing.T) {
            req := httptest.NewRequest("POST", "/api/mpesa/initiate", strings.NewReader(body))
            rec := httptest.NewRecorder()

            h.InitiatePayment(rec, req)

            assert.Equal(t, http.StatusBadRequest, rec.Code)

            var resp models.APIResponse
            require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
            assert.Equal(t, "error", resp.Status)
            assert.Contains(t, resp.Message, "Missing required field")
        })
    }
}

func TestInitiatePaymentInvalidBody(t *testing.T) {
    h := &MpesaHandler{}

    req := httptest.NewRequest("POST", "/api/mpesa/initiate", strings.NewReader(`not json`))
    rec := httptest.NewRecorder()

    h.InitiatePayment(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitiatePaymentRejectsInvalidPhone(t *testing.T) {
    // A service without credentials runs against the stub gateway, but
    // validation fires before any gateway work.
    h := &MpesaHandler{mpesaService: mpesa.NewService(mpesa.Config{})}

    body := `{"phone_number": "0712345678", "amount": 100, "reference": "TRX-000001"}`
    req := httptest.NewRequest("POST", "/api/mpesa/initiate", strings.NewReader(body))
    rec := httptest.NewRecorder()

    h.InitiatePayment(rec, req)

    assert.Equal(t, http.StatusBadRequest, rec.Code)

    var resp models.APIResponse
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Contains(t, resp.Message, "254")
}
