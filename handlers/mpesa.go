package handlers

import (
    "context"
    "fmt"
    "io"
    "log"
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/gorilla/mux"
    "github.com/gorilla/sessions"

    "supermarket-pos-api/config"
    "supermarket-pos-api/database"
    "supermarket-pos-api/models"
    "supermarket-pos-api/queue"
    "supermarket-pos-api/services/mpesa"
    "supermarket-pos-api/utils"
)

// statusCheckDelay is how long we give the customer (and the gateway
// callback) before polling for an unresolved push.
const statusCheckDelay = 2 * time.Minute

type MpesaHandler struct {
    db           *database.Connection
    mpesaService *mpesa.Service
    queue        *queue.Queue
    store        *sessions.CookieStore
}

func NewMpesaHandler(db *database.Connection, ms *mpesa.Service, q *queue.Queue, cfg *config.Config) *MpesaHandler {
    store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
    store.Options = &sessions.Options{
        Path:     "/",
        MaxAge:   cfg.Session.MaxAge,
        HttpOnly: true,
        SameSite: http.SameSiteLaxMode,
    }
    return &MpesaHandler{db: db, mpesaService: ms, queue: q, store: store}
}

// InitiatePayment starts an STK push for a sale at the register.
func (h *MpesaHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
    requestID := uuid.New().String()

    var req struct {
        PhoneNumber string   `json:"phone_number"`
        Amount      *float64 `json:"amount"`
        Reference   string   `json:"reference"`
        Description string   `json:"description"`
    }
    if err := decodeJSONBody(r, &req); err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
        return
    }

    for field, missing := range map[string]bool{
        "phone_number": req.PhoneNumber == "",
        "amount":       req.Amount == nil,
        "reference":    req.Reference == "",
    } {
        if missing {
            utils.SendErrorResponse(w, http.StatusBadRequest, "Missing required field: "+field)
            return
        }
    }

    payment := &models.PaymentRequest{
        PhoneNumber: req.PhoneNumber,
        Amount:      *req.Amount,
        Reference:   req.Reference,
        Description: req.Description,
    }
    if payment.Description == "" {
        payment.Description = "Payment for goods"
    }

    log.Printf("[RequestID: %s] Initiating M-PESA payment of %.2f for reference %s",
        requestID, payment.Amount, payment.Reference)

    result, err := h.mpesaService.InitiateSTKPush(r.Context(), payment)
    if err != nil {
        // Validation failures never reach the network.
        utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
        return
    }

    if result.Failed() {
        message := result.ResponseDescription()
        if message == "" {
            message = "Failed to initiate payment"
        }
        log.Printf("[RequestID: %s] STK push failed: %s", requestID, message)
        utils.SendJSON(w, http.StatusBadRequest, models.APIResponse{
            Status:  "error",
            Message: message,
            Data:    result,
        })
        return
    }

    checkoutRequestID := result.CheckoutRequestID()
    if checkoutRequestID != "" {
        h.rememberCheckout(w, r, checkoutRequestID, payment)

        err := h.db.SaveMpesaPayment(&models.MpesaPayment{
            CheckoutRequestID: checkoutRequestID,
            MerchantRequestID: result.MerchantRequestID(),
            Reference:         payment.Reference,
            PhoneNumber:       payment.PhoneNumber,
            Amount:            payment.Amount,
            Simulation:        result.Simulated(),
        })
        if err != nil {
            log.Printf("[RequestID: %s] Error persisting pending payment: %v", requestID, err)
        }

        // Schedule a poll in case the gateway callback never arrives.
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        err = h.queue.EnqueueDelayed(ctx, queue.JobTypeStatusCheck, map[string]interface{}{
            "checkout_request_id": checkoutRequestID,
        }, statusCheckDelay)
        cancel()
        if err != nil {
            log.Printf("[RequestID: %s] Error scheduling status check: %v", requestID, err)
        }
    }

    utils.SendSuccessResponse(w, models.APIResponse{
        Status:  "success",
        Message: "Payment initiated successfully. Please complete on your phone.",
        Data: map[string]interface{}{
            "checkout_request_id": checkoutRequestID,
            "reference":           payment.Reference,
            "simulation":          result.Simulated(),
        },
    })
}

func (h *MpesaHandler) rememberCheckout(w http.ResponseWriter, r *http.Request, checkoutRequestID string, payment *models.PaymentRequest) {
    session, err := h.store.Get(r, "pos-session")
    if err != nil {
        log.Printf("Error getting session: %v", err)
        return
    }
    session.Values["mpesa_checkout_id"] = checkoutRequestID
    session.Values["mpesa_reference"] = payment.Reference
    session.Values["mpesa_amount"] = payment.Amount
    if err := session.Save(r, w); err != nil {
        log.Printf("Error saving session: %v", err)
    }
}

// VerifyPayment polls the gateway for the state of an in-flight push.
func (h *MpesaHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
    checkoutRequestID := mux.Vars(r)["checkout_request_id"]

    result, err := h.mpesaService.CheckStatus(r.Context(), checkoutRequestID)
    if err != nil {
        utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
        return
    }

    if result.Failed() {
        message := result.ResponseDescription()
        if message == "" {
            message = "Failed to verify payment"
        }
        utils.SendJSON(w, http.StatusBadRequest, models.APIResponse{
            Status:  "error",
            Message: message,
            Data:    result,
        })
        return
    }

    resultCode, _ := result.ResultCode()
    resultDesc, _ := result["ResultDesc"].(string)

    data := map[string]interface{}{
        "result_code": resultCode,
        "result_desc": resultDesc,
        "simulation":  result.Simulated(),
    }

    if resultCode == "0" {
        utils.SendSuccessResponse(w, models.APIResponse{
            Status:  "success",
            Message: "Payment completed successfully",
            Data:    data,
        })
        return
    }

    if resultDesc == "" {
        resultDesc = "Pending or failed payment"
    }
    utils.SendJSON(w, http.StatusOK, models.APIResponse{
        Status:  "error",
        Message: resultDesc,
        Data:    data,
    })
}

// HandleCallback receives the asynchronous payment notification from the
// gateway. It always answers with a well-formed acknowledgment; the gateway
// has no way to handle anything else.
func (h *MpesaHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
    body, err := io.ReadAll(r.Body)
    if err != nil {
        utils.SendJSON(w, http.StatusBadRequest, mpesa.AckInvalid())
        return
    }

    log.Printf("M-PESA callback received: %s", body)

    result, err := mpesa.ParseCallback(body)
    if err != nil {
        log.Printf("Invalid M-PESA callback data: %v", err)
        utils.SendJSON(w, http.StatusBadRequest, mpesa.AckInvalid())
        return
    }

    if result.Succeeded() {
        log.Printf("Successful M-PESA payment: %s, Amount: %.2f, Phone: %s",
            result.ReceiptNumber, result.Amount, result.PhoneNumber)
    } else {
        log.Printf("M-PESA payment failed: %s", result.ResultDesc)
    }

    // The outcome is applied to the stored payment in the background; the
    // ack must not wait on the database.
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    err = h.queue.Enqueue(ctx, queue.JobTypeFinalizePayment, map[string]interface{}{
        "checkout_request_id": result.CheckoutRequestID,
        "result_code":         result.ResultCode,
        "result_desc":         result.ResultDesc,
        "amount":              result.Amount,
        "receipt_number":      result.ReceiptNumber,
        "transaction_date":    result.TransactionDate,
        "phone_number":        result.PhoneNumber,
    })
    cancel()
    if err != nil {
        log.Printf("Error enqueueing payment finalization: %v", err)
    }

    utils.SendJSON(w, http.StatusOK, mpesa.AckReceived())
}
