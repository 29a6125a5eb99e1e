package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupRequestValidate(t *testing.T) {
	valid := SignupRequest{FullName: "Alice", Email: "Alice@Example.COM", Password: "password123"}
	require.NoError(t, valid.Validate())
	// Email normalize edilir
	assert.Equal(t, "alice@example.com", valid.Email)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"name too short", SignupRequest{FullName: "A", Email: "a@b.com", Password: "password123"}},
		{"name too long", SignupRequest{FullName: strings.Repeat("a", 65), Email: "a@b.com", Password: "password123"}},
		{"missing email", SignupRequest{FullName: "Alice", Password: "password123"}},
		{"email without at", SignupRequest{FullName: "Alice", Email: "nope", Password: "password123"}},
		{"short password", SignupRequest{FullName: "Alice", Email: "a@b.com", Password: "1234567"}},
		{"bio too long", SignupRequest{FullName: "Alice", Email: "a@b.com", Password: "password123", Bio: strings.Repeat("b", 201)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.req.Validate())
		})
	}
}

func TestUpdateProfileRequestValidate(t *testing.T) {
	// Boş istek geçerli — hiçbir alanı değiştirmez
	assert.NoError(t, (&UpdateProfileRequest{}).Validate())

	name := "  Alice  "
	req := UpdateProfileRequest{FullName: &name}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Alice", *req.FullName, "name is trimmed in place")

	short := "A"
	assert.Error(t, (&UpdateProfileRequest{FullName: &short}).Validate())

	longBio := strings.Repeat("b", 201)
	assert.Error(t, (&UpdateProfileRequest{Bio: &longBio}).Validate())
}
