package mpesa

import (
    "bytes"
    "context"
    "encoding/json"
    "io"
    "log"
    "net/http"
    "time"

    "supermarket-pos-api/models"
)

// Gateway is the payment gateway capability. Two implementations exist: the
// live Daraja gateway and a stub used when credentials are absent. Both
// report failures as GatewayResponse values, never as raised errors, so the
// caller is always left in a resolved state.
type Gateway interface {
    InitiateSTKPush(ctx context.Context, req *models.PaymentRequest) GatewayResponse
    QueryStatus(ctx context.Context, checkoutRequestID string) GatewayResponse
    Simulated() bool
}

type liveGateway struct {
    cfg    Config
    client *Client
}

func newLiveGateway(cfg Config) *liveGateway {
    return &liveGateway{cfg: cfg, client: NewClient(cfg)}
}

func (g *liveGateway) Simulated() bool { return false }

func (g *liveGateway) InitiateSTKPush(ctx context.Context, req *models.PaymentRequest) GatewayResponse {
    token, err := g.client.GetAccessToken(ctx)
    if err != nil {
        log.Printf("M-PESA API error: %v", err)
        return failureResponse("M-PESA API error: %v", err)
    }

    // Timestamp and password are time-sensitive and derived fresh per call.
    timestamp := time.Now().Format(timestampFormat)
    password, err := DerivePassword(g.cfg.ShortCode, g.cfg.PassKey, timestamp)
    if err != nil {
        return failureResponse("M-PESA API error: %v", err)
    }

    payload := stkPushRequest{
        BusinessShortCode: g.cfg.ShortCode,
        Password:          password,
        Timestamp:         timestamp,
        TransactionType:   "CustomerPayBillOnline",
        Amount:            int(req.Amount),
        PartyA:            req.PhoneNumber,
        PartyB:            g.cfg.ShortCode,
        PhoneNumber:       req.PhoneNumber,
        CallBackURL:       g.cfg.CallbackURL,
        AccountReference:  req.Reference,
        TransactionDesc:   req.Description,
    }

    return g.post(ctx, g.client.stkPushURL, token, payload)
}

func (g *liveGateway) QueryStatus(ctx context.Context, checkoutRequestID string) GatewayResponse {
    token, err := g.client.GetAccessToken(ctx)
    if err != nil {
        log.Printf("M-PESA API error during status check: %v", err)
        return failureResponse("M-PESA API error: %v", err)
    }

    timestamp := time.Now().Format(timestampFormat)
    password, err := DerivePassword(g.cfg.ShortCode, g.cfg.PassKey, timestamp)
    if err != nil {
        return failureResponse("M-PESA API error: %v", err)
    }

    payload := stkQueryRequest{
        BusinessShortCode: g.cfg.ShortCode,
        Password:          password,
        Timestamp:         timestamp,
        CheckoutRequestID: checkoutRequestID,
    }

    return g.post(ctx, g.client.queryURL, token, payload)
}

// post submits one bearer-authenticated JSON request. An HTTP 200 body is
// passed through verbatim; anything else becomes a failure envelope value.
func (g *liveGateway) post(ctx context.Context, url, token string, payload interface{}) GatewayResponse {
    body, err := json.Marshal(payload)
    if err != nil {
        return failureResponse("System error: %v", err)
    }

    ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
    defer cancel()

    req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
    if err != nil {
        return failureResponse("System error: %v", err)
    }
    req.Header.Set("Authorization", "Bearer "+token)
    req.Header.Set("Content-Type", "application/json")

    resp, err := g.client.client.Do(req)
    if err != nil {
        log.Printf("Network error during gateway request: %v", err)
        return failureResponse("Network error: %v", err)
    }
    defer resp.Body.Close()

    respBody, err := io.ReadAll(resp.Body)
    if err != nil {
        return failureResponse("Network error: %v", err)
    }

    if resp.StatusCode != http.StatusOK {
        log.Printf("Gateway request failed with status %d: %s", resp.StatusCode, respBody)
        return failureResponse("Error: %s", respBody)
    }

    var result GatewayResponse
    if err := json.Unmarshal(respBody, &result); err != nil {
        return failureResponse("Error decoding gateway response: %v", err)
    }

    return result
}
