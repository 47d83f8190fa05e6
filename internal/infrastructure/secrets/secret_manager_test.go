package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceName(t *testing.T) {
	name, err := ResourceName("shop", "firebase-creds")
	require.NoError(t, err)
	assert.Equal(t, "projects/shop/secrets/firebase-creds/versions/latest", name)

	name, err = ResourceName("", "projects/other/secrets/x")
	require.NoError(t, err)
	assert.Equal(t, "projects/other/secrets/x/versions/latest", name)

	name, err = ResourceName("", "projects/other/secrets/x/versions/3")
	require.NoError(t, err)
	assert.Equal(t, "projects/other/secrets/x/versions/3", name)

	_, err = ResourceName("", "bare")
	assert.Error(t, err)
	_, err = ResourceName("shop", " ")
	assert.Error(t, err)
}

func TestAccessWithoutClient(t *testing.T) {
	var p *Provider
	_, err := p.Access(context.Background(), "x")
	assert.ErrorIs(t, err, errNotConfigured)
}
