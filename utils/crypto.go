package utils

import (
    "crypto/rand"
    "math/big"
)

func GenerateRandomString(length int) string {
    const charset = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
    result := make([]byte, length)
    for i := range result {
        n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
        result[i] = charset[n.Int64()]
    }
    return string(result)
}

// GenerateReference produces a sale reference like TRX-492817.
func GenerateReference() string {
    const charset = "0123456789"
    result := make([]byte, 6)
    for i := range result {
        n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
        result[i] = charset[n.Int64()]
    }
    return "TRX-" + string(result)
}
