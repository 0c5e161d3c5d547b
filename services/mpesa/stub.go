package mpesa

import (
    "context"
    "fmt"
    "time"

    "supermarket-pos-api/models"
)

// stubGateway stands in for the live gateway when credentials are absent.
// Responses are well formed and always successful, flagged with
// "simulation": true so callers never mistake them for a real
// acknowledgment.
type stubGateway struct {
    pushDelay  time.Duration
    queryDelay time.Duration
}

func newStubGateway() *stubGateway {
    return &stubGateway{
        pushDelay:  2 * time.Second,
        queryDelay: time.Second,
    }
}

func (g *stubGateway) Simulated() bool { return true }

func (g *stubGateway) InitiateSTKPush(ctx context.Context, req *models.PaymentRequest) GatewayResponse {
    sleep(ctx, g.pushDelay)
    return GatewayResponse{
        "simulation":          true,
        "CheckoutRequestID":   fmt.Sprintf("ws_CO_%d", time.Now().Unix()),
        "ResponseCode":        "0",
        "ResponseDescription": "Success. Request accepted for processing",
        "CustomerMessage":     "Success. Request accepted for processing",
    }
}

func (g *stubGateway) QueryStatus(ctx context.Context, checkoutRequestID string) GatewayResponse {
    sleep(ctx, g.queryDelay)
    return GatewayResponse{
        "simulation":          true,
        "ResponseCode":        "0",
        "ResponseDescription": "The service request has been accepted successsfully",
        "ResultCode":          "0",
        "ResultDesc":          "The service request is processed successfully.",
    }
}

func sleep(ctx context.Context, d time.Duration) {
    select {
    case <-ctx.Done():
    case <-time.After(d):
    }
}
