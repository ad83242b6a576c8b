package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/bossygit/digital-medical-certificate-system/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	require.NoError(t, Verify("correct horse", hash))

	err = Verify("wrong horse", hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestHashRejectsEmptyAndOversized(t *testing.T) {
	_, err := Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = Hash(strings.Repeat("x", 80))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	a, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	b, err := GenerateTemporaryPassword()
	require.NoError(t, err)

	assert.Len(t, a, TemporaryPasswordBytes*2)
	assert.NotEqual(t, a, b)
}

func TestGenerateSigningKey(t *testing.T) {
	key, err := Generate()
	require.NoError(t, err)
	assert.Len(t, key, 43)
	assert.NotContains(t, key, "=")
}
