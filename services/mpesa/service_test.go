package mpesa

import (
    "context"
    "strings"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "supermarket-pos-api/models"
)

// spyGateway records calls so tests can prove validation happens before any
// gateway activity.
type spyGateway struct {
    pushCalls  int
    queryCalls int
}

func (g *spyGateway) InitiateSTKPush(ctx context.Context, req *models.PaymentRequest) GatewayResponse {
    g.pushCalls++
    return GatewayResponse{"ResponseCode": "0"}
}

func (g *spyGateway) QueryStatus(ctx context.Context, checkoutRequestID string) GatewayResponse {
    g.queryCalls++
    return GatewayResponse{"ResponseCode": "0"}
}

func (g *spyGateway) Simulated() bool { return false }

func TestNewServiceSelectsStubWithoutCredentials(t *testing.T) {
    svc := NewService(Config{ShortCode: "174379", PassKey: "passkey"})
    assert.True(t, svc.Simulated())
}

func TestNewServiceSelectsLiveWithCredentials(t *testing.T) {
    svc := NewService(Config{
        ConsumerKey:    "key",
        ConsumerSecret: "secret",
        ShortCode:      "174379",
        PassKey:        "passkey",
    })
    assert.False(t, svc.Simulated())
}

func TestInitiateSTKPushRejectsInvalidPhone(t *testing.T) {
    spy := &spyGateway{}
    svc := &Service{gateway: spy}

    _, err := svc.InitiateSTKPush(context.Background(), &models.PaymentRequest{
        PhoneNumber: "0712345678",
        Amount:      100,
        Reference:   "TRX-000001",
    })
    assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
    assert.Zero(t, spy.pushCalls, "validation failure must not reach the gateway")
}

func TestInitiateSTKPushRejectsInvalidAmount(t *testing.T) {
    spy := &spyGateway{}
    svc := &Service{gateway: spy}

    for _, amount := range []float64{0, -5} {
        _, err := svc.InitiateSTKPush(context.Background(), &models.PaymentRequest{
            PhoneNumber: "254712345678",
            Amount:      amount,
            Reference:   "TRX-000001",
        })
        assert.ErrorIs(t, err, ErrInvalidAmount)
    }
    assert.Zero(t, spy.pushCalls)
}

func TestInitiateSTKPushDefaultsDescription(t *testing.T) {
    spy := &spyGateway{}
    svc := &Service{gateway: spy}

    req := &models.PaymentRequest{
        PhoneNumber: "254712345678",
        Amount:      100,
        Reference:   "TRX-000001",
    }
    _, err := svc.InitiateSTKPush(context.Background(), req)
    require.NoError(t, err)
    assert.Equal(t, "Payment", req.Description)
    assert.Equal(t, 1, spy.pushCalls)
}

func TestCheckStatusRequiresCheckoutID(t *testing.T) {
    spy := &spyGateway{}
    svc := &Service{gateway: spy}

    _, err := svc.CheckStatus(context.Background(), "")
    assert.ErrorIs(t, err, ErrMissingCheckoutID)
    assert.Zero(t, spy.queryCalls)

    _, err = svc.CheckStatus(context.Background(), "ws_CO_123")
    require.NoError(t, err)
    assert.Equal(t, 1, spy.queryCalls)
}

func TestStubGatewayPush(t *testing.T) {
    stub := &stubGateway{pushDelay: time.Millisecond, queryDelay: time.Millisecond}

    result := stub.InitiateSTKPush(context.Background(), &models.PaymentRequest{
        PhoneNumber: "254712345678",
        Amount:      250,
        Reference:   "TRX-000001",
    })

    assert.True(t, result.Simulated())
    assert.False(t, result.Failed())
    assert.Equal(t, "0", result.ResponseCode())
    assert.True(t, strings.HasPrefix(result.CheckoutRequestID(), "ws_CO_"))
}

func TestStubGatewayQuery(t *testing.T) {
    stub := &stubGateway{pushDelay: time.Millisecond, queryDelay: time.Millisecond}

    result := stub.QueryStatus(context.Background(), "ws_CO_123")

    assert.True(t, result.Simulated())
    resultCode, ok := result.ResultCode()
    require.True(t, ok)
    assert.Equal(t, "0", resultCode)
}

func TestFailureResponseShape(t *testing.T) {
    result := failureResponse("Error: %s", "upstream rejected")

    assert.True(t, result.Failed())
    assert.Equal(t, "1", result.ResponseCode())
    assert.Equal(t, "Error: upstream rejected", result.ResponseDescription())
}
