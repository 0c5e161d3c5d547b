package mpesa

import (
    "encoding/json"
    "errors"
    "fmt"
)

var ErrInvalidCallback = errors.New("invalid callback data")

// The gateway wraps the result in Body.stkCallback. Pointers distinguish a
// missing level from a zero-valued one when deciding whether the shape is
// recognized.
type callbackEnvelope struct {
    Body *struct {
        StkCallback *struct {
            MerchantRequestID string `json:"MerchantRequestID"`
            CheckoutRequestID string `json:"CheckoutRequestID"`
            ResultCode        *int   `json:"ResultCode"`
            ResultDesc        string `json:"ResultDesc"`
            CallbackMetadata  struct {
                Item []CallbackItem `json:"Item"`
            } `json:"CallbackMetadata"`
        } `json:"stkCallback"`
    } `json:"Body"`
}

// CallbackItem is one entry of the unordered metadata list. Value may be a
// string or a number depending on the field.
type CallbackItem struct {
    Name  string      `json:"Name"`
    Value interface{} `json:"Value"`
}

type CallbackAck struct {
    ResultCode int    `json:"ResultCode"`
    ResultDesc string `json:"ResultDesc"`
}

// CallbackResult is the unwrapped payment outcome. Metadata fields are only
// populated when ResultCode is 0.
type CallbackResult struct {
    MerchantRequestID string
    CheckoutRequestID string
    ResultCode        int
    ResultDesc        string
    Amount            float64
    ReceiptNumber     string
    TransactionDate   string
    PhoneNumber       string
}

func (r *CallbackResult) Succeeded() bool {
    return r.ResultCode == 0
}

// AckReceived is the fixed-shape acknowledgment for any recognized callback,
// regardless of the payment outcome.
func AckReceived() CallbackAck {
    return CallbackAck{ResultCode: 0, ResultDesc: "Confirmation received successfully"}
}

// AckInvalid acknowledges a malformed payload. The gateway cannot act on an
// error, so even this path answers with a well-formed body.
func AckInvalid() CallbackAck {
    return CallbackAck{ResultCode: 1, ResultDesc: "Invalid callback data"}
}

// ParseCallback unwraps a gateway notification. ErrInvalidCallback is
// returned when the payload is not JSON or lacks the Body.stkCallback levels.
func ParseCallback(data []byte) (*CallbackResult, error) {
    var envelope callbackEnvelope
    if err := json.Unmarshal(data, &envelope); err != nil {
        return nil, ErrInvalidCallback
    }

    if envelope.Body == nil || envelope.Body.StkCallback == nil || envelope.Body.StkCallback.ResultCode == nil {
        return nil, ErrInvalidCallback
    }

    cb := envelope.Body.StkCallback
    result := &CallbackResult{
        MerchantRequestID: cb.MerchantRequestID,
        CheckoutRequestID: cb.CheckoutRequestID,
        ResultCode:        *cb.ResultCode,
        ResultDesc:        cb.ResultDesc,
    }

    if result.ResultCode == 0 {
        items := cb.CallbackMetadata.Item
        result.Amount = metaFloat(items, "Amount")
        result.ReceiptNumber = metaString(items, "MpesaReceiptNumber")
        result.TransactionDate = metaString(items, "TransactionDate")
        result.PhoneNumber = metaString(items, "PhoneNumber")
    }

    return result, nil
}

func metaFloat(items []CallbackItem, name string) float64 {
    for _, item := range items {
        if item.Name != name {
            continue
        }
        if v, ok := item.Value.(float64); ok {
            return v
        }
    }
    return 0
}

func metaString(items []CallbackItem, name string) string {
    for _, item := range items {
        if item.Name != name {
            continue
        }
        switch v := item.Value.(type) {
        case string:
            return v
        case float64:
            // Receipt dates and phone numbers arrive as JSON numbers.
            return fmt.Sprintf("%.0f", v)
        }
    }
    return ""
}
