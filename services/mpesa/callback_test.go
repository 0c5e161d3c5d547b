package mpesa

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const successCallback = `{
    "Body": {
        "stkCallback": {
            "MerchantRequestID": "29115-34620561-1",
            "CheckoutRequestID": "ws_CO_191220191020363925",
            "ResultCode": 0,
            "ResultDesc": "The service request is processed successfully.",
            "CallbackMetadata": {
                "Item": [
                    {"Name": "Amount", "Value": 50.00},
                    {"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
                    {"Name": "TransactionDate", "Value": 20191219102115},
                    {"Name": "PhoneNumber", "Value": 254708374149}
                ]
            }
        }
    }
}`

const cancelledCallback = `{
    "Body": {
        "stkCallback": {
            "MerchantRequestID": "29115-34620561-1",
            "CheckoutRequestID": "ws_CO_191220191020363925",
            "ResultCode": 1032,
            "ResultDesc": "Request cancelled by user"
        }
    }
}`

func TestParseCallbackSuccess(t *testing.T) {
    result, err := ParseCallback([]byte(successCallback))
    require.NoError(t, err)

    assert.True(t, result.Succeeded())
    assert.Equal(t, 0, result.ResultCode)
    assert.Equal(t, "ws_CO_191220191020363925", result.CheckoutRequestID)
    assert.Equal(t, "29115-34620561-1", result.MerchantRequestID)
    assert.Equal(t, 50.0, result.Amount)
    assert.Equal(t, "NLJ7RT61SV", result.ReceiptNumber)
    assert.Equal(t, "20191219102115", result.TransactionDate)
    assert.Equal(t, "254708374149", result.PhoneNumber)
}

func TestParseCallbackCancelled(t *testing.T) {
    result, err := ParseCallback([]byte(cancelledCallback))
    require.NoError(t, err)

    assert.False(t, result.Succeeded())
    assert.Equal(t, 1032, result.ResultCode)
    assert.Equal(t, "Request cancelled by user", result.ResultDesc)
    assert.Empty(t, result.ReceiptNumber)
    assert.Zero(t, result.Amount)
}

func TestParseCallbackMalformed(t *testing.T) {
    cases := map[string]string{
        "not json":            `not json at all`,
        "empty object":        `{}`,
        "missing stkCallback": `{"Body": {}}`,
        "missing result code": `{"Body": {"stkCallback": {"CheckoutRequestID": "ws_CO_1"}}}`,
        "wrong top level":     `{"TransactionType": "Pay Bill"}`,
    }

    for name, payload := range cases {
        t.Run(name, func(t *testing.T) {
            _, err := ParseCallback([]byte(payload))
            assert.ErrorIs(t, err, ErrInvalidCallback)
        })
    }
}

func TestParseCallbackMissingMetadataItems(t *testing.T) {
    payload := `{
        "Body": {
            "stkCallback": {
                "CheckoutRequestID": "ws_CO_1",
                "ResultCode": 0,
                "ResultDesc": "ok",
                "CallbackMetadata": {"Item": [{"Name": "Amount", "Value": 75}]}
            }
        }
    }`

    result, err := ParseCallback([]byte(payload))
    require.NoError(t, err)
    assert.Equal(t, 75.0, result.Amount)
    assert.Empty(t, result.ReceiptNumber)
    assert.Empty(t, result.PhoneNumber)
}

func TestAckShapes(t *testing.T) {
    received := AckReceived()
    assert.Equal(t, 0, received.ResultCode)
    assert.Equal(t, "Confirmation received successfully", received.ResultDesc)

    invalid := AckInvalid()
    assert.Equal(t, 1, invalid.ResultCode)
    assert.Equal(t, "Invalid callback data", invalid.ResultDesc)
}
