package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA1Hasher_Hash(t *testing.T) {
	h := NewSHA1Hasher()

	assert.Equal(t, "obkanHeotP32HiKllYhs/aRLUAc=", h.Hash([]byte{0xFF, 0xD8, 0xFF, 0xDB}))
	assert.Equal(t, "2jmj7l5rSw0yVb/vlWAYkK/YBwk=", h.Hash(nil))
}
