package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// Identity is what a verified ID token tells us about the caller.
type Identity struct {
	UID   string
	Email string
	Admin bool
}

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(result.UID, result.Claims), nil
}

// identityFromClaims reads the email and the custom admin claim.
func identityFromClaims(uid string, claims map[string]interface{}) *Identity {
	id := &Identity{UID: uid}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if admin, ok := claims["admin"].(bool); ok {
		id.Admin = admin
	}
	return id
}

// SetAdmin grants or revokes the admin custom claim.
func (f *FirebaseAuthClient) SetAdmin(ctx context.Context, uid string, admin bool) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"admin": admin})
}
