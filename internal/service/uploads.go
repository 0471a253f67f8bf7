package service

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tajious/parkify/internal/metrics"
	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/objectstore"
	"github.com/tajious/parkify/internal/storage"
)

type UploadImageInput struct {
	LessorID     uint
	ParkingLotID uint
	Bucket       string
	FileName     string
	ContentType  string
	Body         []byte
	OldImagePath string
}

// ImageService writes only to the buckets it was built with.
type ImageService struct {
	store   storage.Storage
	objects objectstore.Store
	buckets []string
	log     zerolog.Logger
	newName func(fileName string) string
}

func NewImageService(store storage.Storage, objects objectstore.Store, buckets []string, log zerolog.Logger) *ImageService {
	return &ImageService{
		store:   store,
		objects: objects,
		buckets: buckets,
		log:     log,
		newName: objectName,
	}
}

// objectRef locates an object in the store.
type objectRef struct {
	bucket string
	path   string
}

// objectName returns a random key that keeps the original extension.
func objectName(fileName string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(fileName))
}

// Upload stores a new parking-lot image and points the row at it.
// The row switches only after the new object exists; the previous object is
// removed last and a failed removal leaves an orphan rather than a broken row.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.UploadImageResponse, error) {
	if !slices.Contains(s.buckets, in.Bucket) {
		return nil, ErrBucketNotAllowed
	}

	lot, err := s.store.GetParkingLot(ctx, in.ParkingLotID)
	if err != nil {
		return nil, err
	}
	if lot.LessorID != in.LessorID {
		return nil, ErrForbidden
	}

	path := s.newName(in.FileName)
	log := s.log.With().Uint("parking_lot_id", lot.ID).Str("bucket", in.Bucket).Str("object", path).Logger()

	if err := s.objects.Upload(ctx, in.Bucket, path, in.ContentType, in.Body); err != nil {
		metrics.ImageUploadsTotal.WithLabelValues("upload_failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	publicURL, err := s.objects.PublicURL(in.Bucket, path)
	if err != nil {
		s.discard(ctx, log, in.Bucket, path)
		metrics.ImageUploadsTotal.WithLabelValues("url_failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrPublicURLFailed, err)
	}

	if err := s.store.UpdateParkingLotImage(ctx, lot.ID, publicURL, in.Bucket, path); err != nil {
		s.discard(ctx, log, in.Bucket, path)
		metrics.ImageUploadsTotal.WithLabelValues("update_failed").Inc()
		return nil, fmt.Errorf("%w: %w", ErrMetadataFailed, err)
	}

	current := objectRef{bucket: in.Bucket, path: path}
	if old, ok := previousObject(lot, in.Bucket, in.OldImagePath); ok && old != current {
		if err := s.objects.Remove(ctx, old.bucket, old.path); err != nil {
			metrics.OrphanedObjectsTotal.Inc()
			log.Warn().Err(err).Str("old_bucket", old.bucket).Str("old_object", old.path).Msg("failed to remove previous image")
		}
	}

	metrics.ImageUploadsTotal.WithLabelValues("success").Inc()
	log.Info().Msg("parking lot image updated")
	return &models.UploadImageResponse{PublicURL: publicURL, ParkingLotID: lot.ID}, nil
}

// discard removes an object that no row references yet.
func (s *ImageService) discard(ctx context.Context, log zerolog.Logger, bucket, path string) {
	if err := s.objects.Remove(context.WithoutCancel(ctx), bucket, path); err != nil {
		metrics.OrphanedObjectsTotal.Inc()
		log.Error().Err(err).Msg("failed to remove unreferenced upload")
	}
}

// previousObject picks the object the row currently references. Rows written
// before the bucket was stored fall back to the request bucket. A client hint is
// trusted only for legacy rows that carry a URL but no stored path, and only when
// that URL points into the request bucket.
func previousObject(lot *models.ParkingLot, bucket, hint string) (objectRef, bool) {
	if lot.LocationImagePath != "" {
		if lot.LocationImageBucket != "" {
			bucket = lot.LocationImageBucket
		}
		return objectRef{bucket: bucket, path: lot.LocationImagePath}, true
	}
	hint = strings.TrimSpace(hint)
	if hint == "" || strings.Contains(hint, "..") || lot.LocationImage == "" {
		return objectRef{}, false
	}
	if strings.HasSuffix(lot.LocationImage, "/"+bucket+"/"+hint) {
		return objectRef{bucket: bucket, path: hint}, true
	}
	return objectRef{}, false
}
