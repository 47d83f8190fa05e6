package firebase

import (
	"context"
	"fmt"
	"os"

	fbapp "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"storefront/internal/infrastructure/secrets"
	"storefront/pkg/config"
	"storefront/pkg/logger"
)

// CredentialsOption resolves service-account credentials. A Secret Manager
// secret wins, then inline JSON, then a file path. With none set, Application
// Default Credentials are used and the option is nil.
func CredentialsOption(ctx context.Context, cfg *config.Config) (option.ClientOption, error) {
	if cfg.FirebaseCredentialsSecret != "" {
		provider, err := secrets.NewProvider(ctx, cfg.FirebaseProject)
		if err != nil {
			return nil, fmt.Errorf("failed to create secret manager client: %w", err)
		}
		defer provider.Close()

		data, err := provider.Access(ctx, cfg.FirebaseCredentialsSecret)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Firebase service account from Secret Manager")
		return option.WithCredentialsJSON(data), nil
	}
	if cfg.FirebaseCredentialsJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)), nil
	}
	if cfg.FirebaseCredentialsPath != "" {
		if _, err := os.Stat(cfg.FirebaseCredentialsPath); err != nil {
			return nil, fmt.Errorf("service account file does not exist: %s", cfg.FirebaseCredentialsPath)
		}
		logger.Info("Using Firebase service account from file: %s", cfg.FirebaseCredentialsPath)
		return option.WithCredentialsFile(cfg.FirebaseCredentialsPath), nil
	}
	logger.Warn("No Firebase credentials configured, using application default credentials")
	return nil, nil
}

// NewApp initializes the Firebase app with the resolved credentials.
func NewApp(ctx context.Context, cfg *config.Config, opt option.ClientOption) (*fbapp.App, error) {
	var opts []option.ClientOption
	if opt != nil {
		opts = append(opts, opt)
	}
	return fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
}
