// internal/pkg/auth/password_test.go
package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordManager_HashAndVerify(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	hash, err := manager.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rSecret", hash)

	assert.NoError(t, manager.VerifyPassword("Sup3rSecret", hash))
	assert.Error(t, manager.VerifyPassword("Sup3rSecre1", hash))
}

func TestPasswordManager_HashRejectsWeakPassword(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	_, err := manager.HashPassword("short")
	assert.Error(t, err)
}

func TestPasswordManager_ValidatePassword(t *testing.T) {
	manager := NewPasswordManager(testConfig())

	cases := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Sup3rSecret", ""},
		{"too short", "Ab1", "at least 8 characters"},
		{"too long", "Ab1" + strings.Repeat("x", 70), "no more than 72 characters"},
		{"no uppercase", "sup3rsecret", "uppercase letter"},
		{"no lowercase", "SUP3RSECRET", "lowercase letter"},
		{"no number", "SuperSecret", "one number"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := manager.ValidatePassword(tc.password)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
