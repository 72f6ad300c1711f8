package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	tok, err := Generate(secret, "u-1", "taller-1", RoleBodeguero, "taller-test", 60)
	require.NoError(t, err)

	claims, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "taller-1", claims.TenantID)
	assert.Equal(t, RoleBodeguero, claims.Role)
	assert.Equal(t, "taller-test", claims.Issuer)
}

func TestParse_Expired(t *testing.T) {
	tok, err := Generate(secret, "u-1", "taller-1", RoleAdmin, "taller-test", -1)
	require.NoError(t, err)

	_, err = Parse(secret, tok)
	assert.Error(t, err)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Generate(secret, "u-1", "taller-1", RoleAdmin, "taller-test", 60)
	require.NoError(t, err)

	_, err = Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := Generate("", "u-1", "taller-1", RoleAdmin, "taller-test", 60)
	assert.Error(t, err)
}
