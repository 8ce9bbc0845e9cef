package ports

import (
	"context"

	"github.com/atjeh-times/news-api/internal/core/domain"
)

const (
	DefaultMaxImageBytes = 10 << 20
	MaxImagesPerRequest  = 10
)

// MediaObject is a stored file on the media host.
type MediaObject struct {
	PublicID string
	URL      string
}

// MediaStore is the external host serving uploaded images.
type MediaStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (*MediaObject, error)
	// Delete removes a stored object. Returns domain.ErrImageNotFound when it
	// does not exist.
	Delete(ctx context.Context, publicID string) error
	// PublicIDFromURL maps a URL served by this store back to its public ID.
	PublicIDFromURL(url string) (string, bool)
}

// ProcessedImage is an upload after validation and resizing.
type ProcessedImage struct {
	Data        []byte
	Format      string
	ContentType string
	Width       int
	Height      int
}

// ImageProcessor validates and normalises raw uploads.
type ImageProcessor interface {
	Process(data []byte) (*ProcessedImage, error)
}

// ImageFile is a single raw upload.
type ImageFile struct {
	Filename string
	Data     []byte
}

// UploadedImage describes an image once it is hosted.
type UploadedImage struct {
	URL      string
	PublicID string
	Width    int
	Height   int
	Format   string
	Bytes    int
}

type UploadService interface {
	Upload(ctx context.Context, actor domain.AuthContext, file ImageFile) (*UploadedImage, error)
	UploadMany(ctx context.Context, actor domain.AuthContext, files []ImageFile) ([]*UploadedImage, error)
	UploadFromURL(ctx context.Context, actor domain.AuthContext, rawURL string) (*UploadedImage, error)
	Delete(ctx context.Context, actor domain.AuthContext, publicID string) error
}
