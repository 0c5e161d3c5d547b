package mpesa

import (
    "encoding/base64"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestBasicAuth(t *testing.T) {
    auth, err := BasicAuth("key", "secret")
    require.NoError(t, err)

    decoded, err := base64.StdEncoding.DecodeString(auth)
    require.NoError(t, err)
    assert.Equal(t, "key:secret", string(decoded))

    again, err := BasicAuth("key", "secret")
    require.NoError(t, err)
    assert.Equal(t, auth, again)
}

func TestBasicAuthMissingCredentials(t *testing.T) {
    _, err := BasicAuth("", "secret")
    assert.ErrorIs(t, err, ErrMissingCredentials)

    _, err = BasicAuth("key", "")
    assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestDerivePassword(t *testing.T) {
    password, err := DerivePassword("174379", "passkey", "20240101120000")
    require.NoError(t, err)

    decoded, err := base64.StdEncoding.DecodeString(password)
    require.NoError(t, err)
    assert.Equal(t, "174379passkey20240101120000", string(decoded))
}

func TestDerivePasswordVariesWithTimestamp(t *testing.T) {
    first, err := DerivePassword("174379", "passkey", "20240101120000")
    require.NoError(t, err)
    second, err := DerivePassword("174379", "passkey", "20240101120001")
    require.NoError(t, err)

    assert.NotEqual(t, first, second)

    same, err := DerivePassword("174379", "passkey", "20240101120000")
    require.NoError(t, err)
    assert.Equal(t, first, same)
}

func TestDerivePasswordMissingCredentials(t *testing.T) {
    _, err := DerivePassword("", "passkey", "20240101120000")
    assert.ErrorIs(t, err, ErrMissingCredentials)

    _, err = DerivePassword("174379", "", "20240101120000")
    assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestHasCredentials(t *testing.T) {
    complete := Config{
        ConsumerKey:    "key",
        ConsumerSecret: "secret",
        ShortCode:      "174379",
        PassKey:        "passkey",
    }
    assert.True(t, complete.HasCredentials())

    for _, mutate := range []func(*Config){
        func(c *Config) { c.ConsumerKey = "" },
        func(c *Config) { c.ConsumerSecret = "" },
        func(c *Config) { c.ShortCode = "" },
        func(c *Config) { c.PassKey = "" },
    } {
        cfg := complete
        mutate(&cfg)
        assert.False(t, cfg.HasCredentials())
    }
}
