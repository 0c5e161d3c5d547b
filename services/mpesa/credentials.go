package mpesa

import (
    "encoding/base64"
    "errors"
)

var ErrMissingCredentials = errors.New("missing M-PESA API credentials")

// Config holds the Daraja credentials and endpoints selection. The four
// credential fields must all be set for live mode; anything less selects the
// stub gateway at startup.
type Config struct {
    ConsumerKey    string
    ConsumerSecret string
    ShortCode      string
    PassKey        string
    Environment    string // "sandbox" or "production"
    CallbackURL    string
}

func (c Config) HasCredentials() bool {
    return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
        c.ShortCode != "" && c.PassKey != ""
}

// BasicAuth builds the Authorization value for the OAuth token request.
func BasicAuth(consumerKey, consumerSecret string) (string, error) {
    if consumerKey == "" || consumerSecret == "" {
        return "", ErrMissingCredentials
    }
    return base64.StdEncoding.EncodeToString([]byte(consumerKey + ":" + consumerSecret)), nil
}

// DerivePassword builds the time-varying API password. Deterministic for a
// given shortcode/passkey/timestamp triple.
func DerivePassword(shortCode, passKey, timestamp string) (string, error) {
    if shortCode == "" || passKey == "" {
        return "", ErrMissingCredentials
    }
    return base64.StdEncoding.EncodeToString([]byte(shortCode + passKey + timestamp)), nil
}
