package usecase

import (
	"context"
	"io"

	"storefront/internal/infrastructure/mailer"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	DeleteImage(ctx context.Context, fileURL string) error
}
