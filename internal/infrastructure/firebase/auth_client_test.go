package firebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("u1", map[string]interface{}{"email": "a@b.c", "admin": true})
	assert.Equal(t, &Identity{UID: "u1", Email: "a@b.c", Admin: true}, id)

	id = identityFromClaims("u2", map[string]interface{}{"admin": "yes"})
	assert.False(t, id.Admin)
	assert.Empty(t, id.Email)
}
