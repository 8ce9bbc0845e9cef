package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
	"github.com/atjeh-times/news-api/internal/pkg/metrics"
)

const (
	remoteFetchTimeout = 15 * time.Second
	remoteDialTimeout  = 5 * time.Second
)

var errBlockedAddress = errors.New("address is not publicly routable")

// sharedAddressSpace is the carrier-grade NAT range, which netip does not
// classify as private.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// UploadService validates images, normalises them and hands them to the media
// host.
type UploadService struct {
	store     ports.MediaStore
	processor ports.ImageProcessor
	client    *http.Client
	maxBytes  int64
	logger    zerolog.Logger
}

func NewUploadService(store ports.MediaStore, processor ports.ImageProcessor, maxBytes int64, logger zerolog.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = ports.DefaultMaxImageBytes
	}
	return &UploadService{
		store:     store,
		processor: processor,
		client:    newRemoteClient(remoteFetchTimeout),
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// Upload stores a single image.
func (s *UploadService) Upload(ctx context.Context, actor domain.AuthContext, file ports.ImageFile) (*ports.UploadedImage, error) {
	if !actor.CanAuthor() {
		return nil, domain.ErrForbidden
	}
	if len(file.Data) == 0 {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.NewValidationError("image", "no image file provided")
	}
	if int64(len(file.Data)) > s.maxBytes {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrImageTooLarge
	}

	img, err := s.processor.Process(file.Data)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	name := fmt.Sprintf("%s.%s", uuid.NewString(), extensionFor(img.Format))
	obj, err := s.store.Put(ctx, name, img.Data, img.ContentType)
	if err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Str("filename", file.Filename).Msg("failed to store image")
		return nil, err
	}

	metrics.ImageUploadsTotal.WithLabelValues("ok").Inc()
	metrics.ImageUploadBytes.Observe(float64(len(img.Data)))
	s.logger.Info().Str("public_id", obj.PublicID).Str("uploader_id", actor.UserID).Int("bytes", len(img.Data)).Msg("image uploaded")

	return &ports.UploadedImage{
		URL:      obj.URL,
		PublicID: obj.PublicID,
		Width:    img.Width,
		Height:   img.Height,
		Format:   img.Format,
		Bytes:    len(img.Data),
	}, nil
}

// UploadMany stores up to ports.MaxImagesPerRequest images. When one fails, the ones
// already stored are removed again.
func (s *UploadService) UploadMany(ctx context.Context, actor domain.AuthContext, files []ports.ImageFile) ([]*ports.UploadedImage, error) {
	switch {
	case len(files) == 0:
		return nil, domain.NewValidationError("images", "no image files provided")
	case len(files) > ports.MaxImagesPerRequest:
		return nil, domain.NewValidationError("images", fmt.Sprintf("at most %d images can be uploaded at once", ports.MaxImagesPerRequest))
	}

	out := make([]*ports.UploadedImage, 0, len(files))
	for _, f := range files {
		img, err := s.Upload(ctx, actor, f)
		if err != nil {
			for _, done := range out {
				if delErr := s.store.Delete(ctx, done.PublicID); delErr != nil {
					metrics.ImageCleanupFailuresTotal.Inc()
					s.logger.Warn().Err(delErr).Str("public_id", done.PublicID).Msg("failed to roll back uploaded image")
				}
			}
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// UploadFromURL fetches a remote image and re-hosts it.
func (s *UploadService) UploadFromURL(ctx context.Context, actor domain.AuthContext, rawURL string) (*ports.UploadedImage, error) {
	if !actor.CanAuthor() {
		return nil, domain.ErrForbidden
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.NewValidationError("imageUrl", "a valid http or https image URL is required")
	}

	if ip, err := netip.ParseAddr(strings.Trim(u.Hostname(), "[]")); err == nil && !publicAddr(ip) {
		return nil, domain.NewValidationError("imageUrl", "image URL must point to a public host")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, errBlockedAddress) {
			return nil, domain.NewValidationError("imageUrl", "image URL must point to a public host")
		}
		s.logger.Warn().Err(err).Str("url", u.String()).Msg("failed to fetch remote image")
		return nil, domain.NewValidationError("imageUrl", "could not fetch image from URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewValidationError("imageUrl", fmt.Sprintf("could not fetch image from URL (status %d)", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read remote image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrImageTooLarge
	}

	return s.Upload(ctx, actor, ports.ImageFile{Filename: path.Base(u.Path), Data: data})
}

// Delete removes a hosted image by its public ID.
func (s *UploadService) Delete(ctx context.Context, actor domain.AuthContext, publicID string) error {
	if !actor.CanAuthor() {
		return domain.ErrForbidden
	}

	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return domain.NewValidationError("publicId", "public id is required")
	}

	if err := s.store.Delete(ctx, publicID); err != nil {
		return err
	}
	s.logger.Info().Str("public_id", publicID).Str("actor_id", actor.UserID).Msg("image deleted")
	return nil
}

func extensionFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// newRemoteClient returns a client that only connects to public addresses.
// The check runs on the resolved address of every dial, redirects included.
// Proxies are disabled so the dial target is the image host itself.
func newRemoteClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: remoteDialTimeout, Control: guardDial}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: timeout, Transport: transport}
}

func guardDial(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedAddress, host)
	}
	if !publicAddr(ip) {
		return fmt.Errorf("%w: %s", errBlockedAddress, ip)
	}
	return nil
}

func publicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsUnspecified(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}
