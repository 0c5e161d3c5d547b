package mpesa

import (
    "context"
    "errors"
    "log"
    "strings"

    "supermarket-pos-api/models"
)

const countryCodePrefix = "254"

var (
    ErrInvalidPhoneNumber = errors.New("phone number must be in the format 254XXXXXXXXX")
    ErrInvalidAmount      = errors.New("amount must be greater than 0")
    ErrMissingCheckoutID  = errors.New("checkout request ID is required")
)

// Service validates caller input and delegates to the gateway selected at
// startup. Validation failures are returned as errors before any network
// activity; gateway failures come back inside the GatewayResponse.
type Service struct {
    gateway Gateway
}

func NewService(cfg Config) *Service {
    if !cfg.HasCredentials() {
        log.Printf("Warning: M-PESA credentials not set. Running in simulation mode.")
        return &Service{gateway: newStubGateway()}
    }
    return &Service{gateway: newLiveGateway(cfg)}
}

func (s *Service) Simulated() bool {
    return s.gateway.Simulated()
}

// InitiateSTKPush starts a payment push to the customer's phone.
func (s *Service) InitiateSTKPush(ctx context.Context, req *models.PaymentRequest) (GatewayResponse, error) {
    if !strings.HasPrefix(req.PhoneNumber, countryCodePrefix) {
        return nil, ErrInvalidPhoneNumber
    }
    if req.Amount <= 0 {
        return nil, ErrInvalidAmount
    }
    if req.Description == "" {
        req.Description = "Payment"
    }

    return s.gateway.InitiateSTKPush(ctx, req), nil
}

// CheckStatus queries the state of a previously initiated push.
func (s *Service) CheckStatus(ctx context.Context, checkoutRequestID string) (GatewayResponse, error) {
    if checkoutRequestID == "" {
        return nil, ErrMissingCheckoutID
    }
    return s.gateway.QueryStatus(ctx, checkoutRequestID), nil
}
