package mpesa

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "supermarket-pos-api/models"
)

func testConfig() Config {
    return Config{
        ConsumerKey:    "key",
        ConsumerSecret: "secret",
        ShortCode:      "174379",
        PassKey:        "passkey",
        CallbackURL:    "https://example.com/api/mpesa/callback",
    }
}

func newTestGateway(authURL, stkPushURL, queryURL string) *liveGateway {
    g := newLiveGateway(testConfig())
    g.client.authURL = authURL
    g.client.stkPushURL = stkPushURL
    g.client.queryURL = queryURL
    return g
}

func tokenServer(t *testing.T, token string) *httptest.Server {
    t.Helper()
    return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "GET", r.Method)
        assert.Contains(t, r.Header.Get("Authorization"), "Basic ")
        json.NewEncoder(w).Encode(map[string]string{
            "access_token": token,
            "expires_in":   "3599",
        })
    }))
}

func TestGetAccessToken(t *testing.T) {
    srv := tokenServer(t, "token-123")
    defer srv.Close()

    client := NewClient(testConfig())
    client.authURL = srv.URL

    token, err := client.GetAccessToken(context.Background())
    require.NoError(t, err)
    assert.Equal(t, "token-123", token)
}

func TestGetAccessTokenUpstreamError(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        json.NewEncoder(w).Encode(map[string]string{
            "errorMessage": "Invalid Authentication passed",
        })
    }))
    defer srv.Close()

    client := NewClient(testConfig())
    client.authURL = srv.URL

    _, err := client.GetAccessToken(context.Background())
    require.Error(t, err)
    assert.Contains(t, err.Error(), "Invalid Authentication passed")
}

func TestLiveGatewayPushPassesBodyThrough(t *testing.T) {
    auth := tokenServer(t, "token-123")
    defer auth.Close()

    var received stkPushRequest
    push := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
        require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
        json.NewEncoder(w).Encode(map[string]string{
            "MerchantRequestID":   "29115-34620561-1",
            "CheckoutRequestID":   "ws_CO_191220191020363925",
            "ResponseCode":        "0",
            "ResponseDescription": "Success. Request accepted for processing",
            "CustomerMessage":     "Success. Request accepted for processing",
        })
    }))
    defer push.Close()

    g := newTestGateway(auth.URL, push.URL, push.URL)
    result := g.InitiateSTKPush(context.Background(), &models.PaymentRequest{
        PhoneNumber: "254712345678",
        Amount:      150.75,
        Reference:   "TRX-000001",
        Description: "Groceries",
    })

    assert.False(t, result.Failed())
    assert.Equal(t, "0", result.ResponseCode())
    assert.Equal(t, "ws_CO_191220191020363925", result.CheckoutRequestID())
    assert.Equal(t, "29115-34620561-1", result.MerchantRequestID())

    // Amount is truncated to whole shillings on the wire.
    assert.Equal(t, 150, received.Amount)
    assert.Equal(t, "174379", received.BusinessShortCode)
    assert.Equal(t, "174379", received.PartyB)
    assert.Equal(t, "254712345678", received.PartyA)
    assert.Equal(t, "254712345678", received.PhoneNumber)
    assert.Equal(t, "CustomerPayBillOnline", received.TransactionType)
    assert.Equal(t, "TRX-000001", received.AccountReference)
    assert.Equal(t, "Groceries", received.TransactionDesc)
    assert.Equal(t, "https://example.com/api/mpesa/callback", received.CallBackURL)
    assert.NotEmpty(t, received.Password)
    assert.Len(t, received.Timestamp, 14)
}

func TestLiveGatewayPushUpstreamRejection(t *testing.T) {
    auth := tokenServer(t, "token-123")
    defer auth.Close()

    push := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusInternalServerError)
        w.Write([]byte(`{"requestId":"1","errorMessage":"Spike detected"}`))
    }))
    defer push.Close()

    g := newTestGateway(auth.URL, push.URL, push.URL)
    result := g.InitiateSTKPush(context.Background(), &models.PaymentRequest{
        PhoneNumber: "254712345678",
        Amount:      100,
        Reference:   "TRX-000001",
        Description: "Groceries",
    })

    assert.True(t, result.Failed())
    assert.Equal(t, "1", result.ResponseCode())
    assert.Contains(t, result.ResponseDescription(), "Error: ")
    assert.Contains(t, result.ResponseDescription(), "Spike detected")
}

func TestLiveGatewayPushTokenFailure(t *testing.T) {
    auth := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusUnauthorized)
        json.NewEncoder(w).Encode(map[string]string{"errorMessage": "Bad credentials"})
    }))
    defer auth.Close()

    g := newTestGateway(auth.URL, auth.URL, auth.URL)
    result := g.InitiateSTKPush(context.Background(), &models.PaymentRequest{
        PhoneNumber: "254712345678",
        Amount:      100,
        Reference:   "TRX-000001",
    })

    assert.True(t, result.Failed())
    assert.Contains(t, result.ResponseDescription(), "M-PESA API error")
}

func TestLiveGatewayQueryStatus(t *testing.T) {
    auth := tokenServer(t, "token-123")
    defer auth.Close()

    var received stkQueryRequest
    query := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
        json.NewEncoder(w).Encode(map[string]string{
            "ResponseCode":        "0",
            "ResponseDescription": "The service request has been accepted successsfully",
            "ResultCode":          "0",
            "ResultDesc":          "The service request is processed successfully.",
        })
    }))
    defer query.Close()

    g := newTestGateway(auth.URL, query.URL, query.URL)
    result := g.QueryStatus(context.Background(), "ws_CO_191220191020363925")

    assert.False(t, result.Failed())
    resultCode, ok := result.ResultCode()
    require.True(t, ok)
    assert.Equal(t, "0", resultCode)
    assert.Equal(t, "ws_CO_191220191020363925", received.CheckoutRequestID)
    assert.Equal(t, "174379", received.BusinessShortCode)
}

func TestClientEnvironmentSelection(t *testing.T) {
    sandbox := NewClient(testConfig())
    assert.Equal(t, SandboxAuthURL, sandbox.authURL)
    assert.Equal(t, SandboxSTKPushURL, sandbox.stkPushURL)
    assert.Equal(t, SandboxQueryURL, sandbox.queryURL)

    cfg := testConfig()
    cfg.Environment = "production"
    production := NewClient(cfg)
    assert.Equal(t, ProductionAuthURL, production.authURL)
    assert.Equal(t, ProductionSTKPushURL, production.stkPushURL)
    assert.Equal(t, ProductionQueryURL, production.queryURL)
}
