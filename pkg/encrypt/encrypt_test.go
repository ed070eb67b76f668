package encrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	assert.Error(t, ValidatePasswordStrength("Ab1!"))
	assert.Error(t, ValidatePasswordStrength("abcdefg1!"))
	assert.Error(t, ValidatePasswordStrength("Abcdefgh!"))
	assert.Error(t, ValidatePasswordStrength("Abcdefgh1"))
	assert.NoError(t, ValidatePasswordStrength("Abcdefg1!"))
}

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("Abcdefg1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Abcdefg1!", hash)

	assert.NoError(t, CheckPassword(hash, "Abcdefg1!"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}
