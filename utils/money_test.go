package utils

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
    assert.Equal(t, 10.57, Round(10.567))
    assert.Equal(t, 10.56, Round(10.562))
    assert.Equal(t, 0.0, Round(0))
    assert.Equal(t, -2.34, Round(-2.339))
    assert.Equal(t, 0.3, Round(0.1+0.2))
}

func TestGenerateReference(t *testing.T) {
    ref := GenerateReference()
    assert.True(t, strings.HasPrefix(ref, "TRX-"))
    assert.Len(t, ref, 10)
    for _, c := range ref[4:] {
        assert.True(t, c >= '0' && c <= '9')
    }
}

func TestGenerateRandomStringLength(t *testing.T) {
    assert.Len(t, GenerateRandomString(16), 16)
    assert.NotEqual(t, GenerateRandomString(16), GenerateRandomString(16))
}
