package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("swordfish", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "swordfish", hash)

	require.NoError(t, ComparePassword(hash, "swordfish"))
	require.Error(t, ComparePassword(hash, "Swordfish"))
}

func TestPasswordHashesAreSalted(t *testing.T) {
	first, err := HashPassword("swordfish", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("swordfish", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
