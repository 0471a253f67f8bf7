package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tajious/parkify/internal/models"
	"github.com/tajious/parkify/internal/objectstore"
	"github.com/tajious/parkify/internal/storage"
)

const (
	bucket      = "parking-lots"
	otherBucket = "lot-gallery"
	baseURL     = "https://store.test"
)

// failingImageUpdate rejects every parking lot image update.
type failingImageUpdate struct {
	*storage.InMemoryStorage
}

func (failingImageUpdate) UpdateParkingLotImage(context.Context, uint, string, string, string) error {
	return errors.New("connection reset")
}

type uploadFixture struct {
	*fixture
	objects *objectstore.MemoryStore
	lessor  *models.Lessor
	lot     *models.ParkingLot
}

func newUploadFixture(t *testing.T) *uploadFixture {
	t.Helper()
	f := newFixture(t)
	l := f.seedLessor(t, "lee@example.com", "pw")
	objects := objectstore.NewMemoryStore(baseURL)
	objects.Put(bucket, "old.png", []byte("old"))

	lot := &models.ParkingLot{LessorID: l.ID, Name: "North"}
	require.NoError(t, f.store.CreateParkingLot(context.Background(), lot))
	require.NoError(t, f.store.UpdateParkingLotImage(context.Background(), lot.ID, baseURL+"/storage/v1/object/public/"+bucket+"/old.png", bucket, "old.png"))

	return &uploadFixture{fixture: f, objects: objects, lessor: l, lot: lot}
}

func (f *uploadFixture) service(store storage.Storage) *ImageService {
	svc := NewImageService(store, f.objects, []string{bucket, otherBucket}, zerolog.Nop())
	svc.newName = func(string) string { return "new.png" }
	return svc
}

func (f *uploadFixture) input() UploadImageInput {
	return UploadImageInput{
		LessorID:     f.lessor.ID,
		ParkingLotID: f.lot.ID,
		Bucket:       bucket,
		FileName:     "Photo.PNG",
		ContentType:  "image/png",
		Body:         []byte("new"),
	}
}

func TestImageService_Upload(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)

	res, err := f.service(f.store).Upload(ctx, f.input())
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/storage/v1/object/public/"+bucket+"/new.png", res.PublicURL)
	assert.Equal(t, f.lot.ID, res.ParkingLotID)

	lot, err := f.store.GetParkingLot(ctx, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, res.PublicURL, lot.LocationImage)
	assert.Equal(t, "new.png", lot.LocationImagePath)

	assert.Equal(t, bucket, lot.LocationImageBucket)
	assert.True(t, f.objects.Has(bucket, "new.png"))
	assert.False(t, f.objects.Has(bucket, "old.png"))
}

func TestImageService_UploadToAnotherBucketRemovesOldObject(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)

	in := f.input()
	in.Bucket = otherBucket
	res, err := f.service(f.store).Upload(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, baseURL+"/storage/v1/object/public/"+otherBucket+"/new.png", res.PublicURL)

	lot, err := f.store.GetParkingLot(ctx, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, otherBucket, lot.LocationImageBucket)
	assert.Equal(t, "new.png", lot.LocationImagePath)

	assert.True(t, f.objects.Has(otherBucket, "new.png"))
	assert.False(t, f.objects.Has(bucket, "old.png"))
}

func TestImageService_RejectsUnlistedBucket(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)

	in := f.input()
	in.Bucket = "private-keys"
	_, err := f.service(f.store).Upload(ctx, in)
	assert.ErrorIs(t, err, ErrBucketNotAllowed)

	assert.Equal(t, 0, f.objects.Count("private-keys"))
	assert.True(t, f.objects.Has(bucket, "old.png"))
	lot, err := f.store.GetParkingLot(ctx, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "old.png", lot.LocationImagePath)
}

func TestImageService_UploadFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)
	f.objects.UploadErr = &objectstore.StorageError{Status: 500, Message: "down"}

	_, err := f.service(f.store).Upload(ctx, f.input())
	assert.ErrorIs(t, err, ErrUploadFailed)

	lot, err := f.store.GetParkingLot(ctx, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "old.png", lot.LocationImagePath)
	assert.True(t, f.objects.Has(bucket, "old.png"))
}

func TestImageService_PublicURLFailureDiscardsUpload(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)
	f.objects.URLErr = errors.New("no url")

	_, err := f.service(f.store).Upload(ctx, f.input())
	assert.ErrorIs(t, err, ErrPublicURLFailed)
	assert.False(t, f.objects.Has(bucket, "new.png"))
	assert.True(t, f.objects.Has(bucket, "old.png"))
}

func TestImageService_UpdateFailureDiscardsUpload(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)

	_, err := f.service(failingImageUpdate{f.store}).Upload(ctx, f.input())
	assert.ErrorIs(t, err, ErrMetadataFailed)
	assert.False(t, f.objects.Has(bucket, "new.png"))
	assert.True(t, f.objects.Has(bucket, "old.png"))

	lot, err := f.store.GetParkingLot(ctx, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, "old.png", lot.LocationImagePath)
}

func TestImageService_OldDeleteFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)
	f.objects.RemoveErr = errors.New("remove failed")

	res, err := f.service(f.store).Upload(ctx, f.input())
	require.NoError(t, err)

	lot, err := f.store.GetParkingLot(ctx, f.lot.ID)
	require.NoError(t, err)
	assert.Equal(t, res.PublicURL, lot.LocationImage)
	assert.True(t, f.objects.Has(bucket, "old.png"))
}

func TestImageService_Ownership(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(t)

	in := f.input()
	in.LessorID++
	_, err := f.service(f.store).Upload(ctx, in)
	assert.ErrorIs(t, err, ErrForbidden)

	in = f.input()
	in.ParkingLotID = 999
	_, err = f.service(f.store).Upload(ctx, in)
	assert.ErrorIs(t, err, storage.ErrParkingLotNotFound)

	assert.Equal(t, 1, f.objects.Count(bucket))
}

func TestPreviousObject(t *testing.T) {
	tests := []struct {
		name   string
		lot    models.ParkingLot
		hint   string
		want   objectRef
		wantOK bool
	}{
		{
			"stored bucket and path win",
			models.ParkingLot{LocationImageBucket: otherBucket, LocationImagePath: "a.png", LocationImage: "https://x/" + bucket + "/b.png"},
			"b.png", objectRef{bucket: otherBucket, path: "a.png"}, true,
		},
		{
			"stored path without bucket",
			models.ParkingLot{LocationImagePath: "a.png"},
			"", objectRef{bucket: bucket, path: "a.png"}, true,
		},
		{
			"legacy row with matching hint",
			models.ParkingLot{LocationImage: "https://x/" + bucket + "/b.png"},
			"b.png", objectRef{bucket: bucket, path: "b.png"}, true,
		},
		{
			"legacy row in another bucket",
			models.ParkingLot{LocationImage: "https://x/" + otherBucket + "/b.png"},
			"b.png", objectRef{}, false,
		},
		{"hint for another object", models.ParkingLot{LocationImage: "https://x/" + bucket + "/b.png"}, "c.png", objectRef{}, false},
		{"no image yet", models.ParkingLot{}, "c.png", objectRef{}, false},
		{"traversal", models.ParkingLot{LocationImage: "https://x/" + bucket + "/../b.png"}, "../b.png", objectRef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := previousObject(&tt.lot, bucket, tt.hint)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectName(t *testing.T) {
	assert.Regexp(t, `^[0-9a-f-]{36}\.jpg$`, objectName("Lot.JPG"))
	assert.Regexp(t, `^[0-9a-f-]{36}$`, objectName("README"))
}
