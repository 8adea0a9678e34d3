package otpcode

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixDigitsInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.True(t, Valid(code), code)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, minCode)
		assert.LessOrEqual(t, n, maxCode)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("123456"))
	assert.False(t, Valid("12345"))
	assert.False(t, Valid("1234567"))
	assert.False(t, Valid("12a456"))
	assert.False(t, Valid(" 123456"))
	assert.False(t, Valid(""))
}
