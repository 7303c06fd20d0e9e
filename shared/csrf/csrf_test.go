package csrf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token1, err := GenerateToken()
	require.NoError(t, err)
	token2, err := GenerateToken()
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)
	assert.GreaterOrEqual(t, len(token1), 32)
}

func TestValidateToken(t *testing.T) {
	token := "test-token-123"

	assert.True(t, ValidateToken(token, token))
	assert.False(t, ValidateToken(token, "other"))
	assert.False(t, ValidateToken("", token))
	assert.False(t, ValidateToken(token, ""))
	assert.False(t, ValidateToken("", ""))
}

func TestWellFormed(t *testing.T) {
	token, err := GenerateToken()
	require.NoError(t, err)
	assert.True(t, WellFormed(token))

	for _, bad := range []string{"", "existing", token[:len(token)-1], token + "A", strings.Repeat("!", len(token))} {
		assert.False(t, WellFormed(bad), bad)
	}
}
