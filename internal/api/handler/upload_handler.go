package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/atjeh-times/news-api/internal/core/domain"
	"github.com/atjeh-times/news-api/internal/core/ports"
)

// UploadHandler accepts image uploads and forwards them to the media host.
type UploadHandler struct {
	service  ports.UploadService
	maxBytes int64
}

// NewUploadHandler builds the handler. Uploaded parts are read up to one byte
// past maxBytes so the service can reject oversized files.
func NewUploadHandler(service ports.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: service, maxBytes: maxBytes}
}

type fromURLRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,http_url"`
}

type imageResponse struct {
	Message  string `json:"message,omitempty"`
	ImageURL string `json:"imageUrl"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
	Bytes    int    `json:"bytes"`
}

type imagesResponse struct {
	Message string          `json:"message"`
	Images  []imageResponse `json:"images"`
}

func toImageResponse(img *ports.UploadedImage) imageResponse {
	return imageResponse{
		ImageURL: img.URL,
		PublicID: img.PublicID,
		Width:    img.Width,
		Height:   img.Height,
		Format:   img.Format,
		Bytes:    img.Bytes,
	}
}

// UploadImage handles POST /api/upload/image.
//
// @Summary      Upload one image
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image  formData  file  true  "jpeg, png, gif or webp, at most 10MB"
// @Success      200    {object}  imageResponse
// @Failure      400    {object}  ErrorResponse
// @Failure      413    {object}  ErrorResponse
// @Router       /upload/image [post]
func (h *UploadHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return domain.NewValidationError("image", "no image file provided")
	}

	file, err := h.read(fh)
	if err != nil {
		return err
	}

	img, err := h.service.Upload(c.Request().Context(), actor(c), file)
	if err != nil {
		return err
	}

	resp := toImageResponse(img)
	resp.Message = "Image uploaded successfully"
	return c.JSON(http.StatusOK, resp)
}

// UploadImages handles POST /api/upload/images.
//
// @Summary      Upload up to 10 images
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        images  formData  file  true  "Image files"
// @Success      200     {object}  imagesResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      413     {object}  ErrorResponse
// @Router       /upload/images [post]
func (h *UploadHandler) UploadImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.NewValidationError("images", "no image files provided")
	}

	headers := form.File["images"]
	files := make([]ports.ImageFile, 0, len(headers))
	for _, fh := range headers {
		f, err := h.read(fh)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	imgs, err := h.service.UploadMany(c.Request().Context(), actor(c), files)
	if err != nil {
		return err
	}

	out := make([]imageResponse, 0, len(imgs))
	for _, img := range imgs {
		out = append(out, toImageResponse(img))
	}
	return c.JSON(http.StatusOK, imagesResponse{
		Message: fmt.Sprintf("%d images uploaded successfully", len(out)),
		Images:  out,
	})
}

// UploadFromURL handles POST /api/upload/from-url.
//
// @Summary      Re-host a remote image
// @Tags         upload
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      fromURLRequest  true  "Remote image"
// @Success      200   {object}  imageResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /upload/from-url [post]
func (h *UploadHandler) UploadFromURL(c echo.Context) error {
	var req fromURLRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	img, err := h.service.UploadFromURL(c.Request().Context(), actor(c), req.ImageURL)
	if err != nil {
		return err
	}

	resp := toImageResponse(img)
	resp.Message = "Image uploaded successfully from URL"
	return c.JSON(http.StatusOK, resp)
}

// DeleteImage handles DELETE /api/upload/image/:publicId. The public id is
// path-escaped by the client since it contains slashes.
//
// @Summary      Delete a hosted image
// @Tags         upload
// @Produce      json
// @Security     BearerAuth
// @Param        publicId  path      string  true  "Escaped public id"
// @Success      200       {object}  messageResponse
// @Failure      404       {object}  ErrorResponse
// @Router       /upload/image/{publicId} [delete]
func (h *UploadHandler) DeleteImage(c echo.Context) error {
	publicID := c.Param("publicId")
	if unescaped, err := url.PathUnescape(publicID); err == nil {
		publicID = unescaped
	}
	if publicID == "" {
		return domain.NewValidationError("publicId", "public id is required")
	}

	if err := h.service.Delete(c.Request().Context(), actor(c), publicID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Image deleted successfully"})
}

func (h *UploadHandler) read(fh *multipart.FileHeader) (ports.ImageFile, error) {
	f, err := fh.Open()
	if err != nil {
		return ports.ImageFile{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxBytes > 0 {
		r = io.LimitReader(f, h.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ports.ImageFile{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return ports.ImageFile{Filename: fh.Filename, Data: data}, nil
}
