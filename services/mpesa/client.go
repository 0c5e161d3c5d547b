package mpesa

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "time"
)

const (
    SandboxAuthURL    = "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials"
    SandboxSTKPushURL = "https://sandbox.safaricom.co.ke/mpesa/stkpush/v1/processrequest"
    SandboxQueryURL   = "https://sandbox.safaricom.co.ke/mpesa/stkpushquery/v1/query"

    ProductionAuthURL    = "https://api.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials"
    ProductionSTKPushURL = "https://api.safaricom.co.ke/mpesa/stkpush/v1/processrequest"
    ProductionQueryURL   = "https://api.safaricom.co.ke/mpesa/stkpushquery/v1/query"

    // The gateway has no explicit SLA; 30s keeps a stuck call from hanging
    // the register indefinitely.
    RequestTimeout = 30 * time.Second

    timestampFormat = "20060102150405"
)

// Client performs the outbound Daraja HTTP calls.
type Client struct {
    consumerKey    string
    consumerSecret string
    authURL        string
    stkPushURL     string
    queryURL       string
    client         *http.Client
}

func NewClient(cfg Config) *Client {
    transport := &http.Transport{
        MaxIdleConns:        100,
        MaxIdleConnsPerHost: 20,
        IdleConnTimeout:     90 * time.Second,
        TLSHandshakeTimeout: 10 * time.Second,
    }

    c := &Client{
        consumerKey:    cfg.ConsumerKey,
        consumerSecret: cfg.ConsumerSecret,
        authURL:        SandboxAuthURL,
        stkPushURL:     SandboxSTKPushURL,
        queryURL:       SandboxQueryURL,
        client: &http.Client{
            Timeout:   RequestTimeout,
            Transport: transport,
        },
    }

    if cfg.Environment == "production" {
        c.authURL = ProductionAuthURL
        c.stkPushURL = ProductionSTKPushURL
        c.queryURL = ProductionQueryURL
    }

    return c
}

// GetAccessToken exchanges the consumer key/secret for a short-lived bearer
// token. Tokens are never cached; each gateway call fetches a fresh one.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
    auth, err := BasicAuth(c.consumerKey, c.consumerSecret)
    if err != nil {
        return "", err
    }

    ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
    defer cancel()

    req, err := http.NewRequestWithContext(ctx, "GET", c.authURL, nil)
    if err != nil {
        return "", fmt.Errorf("error creating token request: %v", err)
    }
    req.Header.Set("Authorization", "Basic "+auth)

    resp, err := c.client.Do(req)
    if err != nil {
        return "", fmt.Errorf("network error: %v", err)
    }
    defer resp.Body.Close()

    var tokenResp accessTokenResponse
    if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
        return "", fmt.Errorf("error decoding token response: %v", err)
    }

    if tokenResp.AccessToken == "" {
        msg := tokenResp.ErrorMessage
        if msg == "" {
            msg = "Unknown error"
        }
        return "", fmt.Errorf("failed to get access token: %s", msg)
    }

    return tokenResp.AccessToken, nil
}
