package services

import (
	"bytes"

	"github.com/disintegration/imaging"
)

const (
	thumbnailMaxSize = 320
	thumbnailQuality = 85
)

// ImageService produces JPEG thumbnails for uploaded photos
type ImageService struct{}

// NewImageService creates a new image service
func NewImageService() *ImageService {
	return &ImageService{}
}

// Thumbnail decodes an image and scales it to fit within 320px,
// re-encoding as JPEG.
func (s *ImageService) Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	thumb := imaging.Fit(img, thumbnailMaxSize, thumbnailMaxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
