// Package secrets reads values from Google Secret Manager.
package secrets

import (
	"context"
	"errors"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

var errNotConfigured = errors.New("secrets: secret manager client not configured")

type Provider struct {
	sm        *secretmanager.Client
	projectID string
}

func NewProvider(ctx context.Context, projectID string, opts ...option.ClientOption) (*Provider, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{sm: client, projectID: projectID}, nil
}

// ResourceName expands a bare secret id into a version resource name. Full
// "projects/..." names are returned unchanged.
func ResourceName(projectID, secret string) (string, error) {
	s := strings.TrimSpace(secret)
	if s == "" {
		return "", errors.New("secrets: secret id is empty")
	}
	if strings.HasPrefix(s, "projects/") {
		if !strings.Contains(s, "/versions/") {
			s += "/versions/latest"
		}
		return s, nil
	}
	prj := strings.TrimSpace(projectID)
	if prj == "" {
		return "", errors.New("secrets: project id is empty")
	}
	return "projects/" + prj + "/secrets/" + s + "/versions/latest", nil
}

// Access returns the payload of the latest (or named) version of secret.
func (p *Provider) Access(ctx context.Context, secret string) ([]byte, error) {
	if p == nil || p.sm == nil {
		return nil, errNotConfigured
	}
	name, err := ResourceName(p.projectID, secret)
	if err != nil {
		return nil, err
	}
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, errors.New("secrets: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil || len(resp.Payload.Data) == 0 {
		return nil, errors.New("secrets: empty payload (" + name + ")")
	}
	return resp.Payload.Data, nil
}

func (p *Provider) Close() error {
	if p == nil || p.sm == nil {
		return nil
	}
	return p.sm.Close()
}
