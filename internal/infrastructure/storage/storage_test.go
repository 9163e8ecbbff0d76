package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucket, opts).Error(0)
}

func (m *mockStore) SetBucketPolicy(ctx context.Context, bucket, policy string) error {
	return m.Called(ctx, bucket, policy).Error(0)
}

func (m *mockStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucket, object, reader, size, opts)
	return minio.UploadInfo{}, args.Error(0)
}

func (m *mockStore) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	return m.Called(ctx, bucket, object, opts).Error(0)
}

func TestUploadPhoto(t *testing.T) {
	store := new(mockStore)
	s := newPhotoStorage(store, "goapps", "/hr/", "https://cdn.example.com/")
	id := uuid.New()

	var object string
	store.On("PutObject", mock.Anything, "goapps", mock.AnythingOfType("string"), mock.Anything, int64(3),
		minio.PutObjectOptions{ContentType: "image/png"}).
		Run(func(args mock.Arguments) { object = args.String(2) }).
		Return(nil)

	url, err := s.UploadPhoto(context.Background(), id, strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(object, "hr/photos/"+id.String()+"/"))
	assert.True(t, strings.HasSuffix(object, ".png"))
	assert.Equal(t, "https://cdn.example.com/goapps/"+object, url)
	store.AssertExpectations(t)
}

func TestUploadPhoto_Failure(t *testing.T) {
	store := new(mockStore)
	s := newPhotoStorage(store, "goapps", "", "http://minio:9000")
	store.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("unreachable"))

	_, err := s.UploadPhoto(context.Background(), uuid.New(), strings.NewReader("x"), 1, "image/jpeg")
	assert.ErrorContains(t, err, "failed to upload photo")
}

func TestDeletePhoto(t *testing.T) {
	store := new(mockStore)
	s := newPhotoStorage(store, "goapps", "hr", "http://minio:9000")
	store.On("RemoveObject", mock.Anything, "goapps", "hr/photos/a/b.jpg", minio.RemoveObjectOptions{}).Return(nil)

	require.NoError(t, s.DeletePhoto(context.Background(), "http://minio:9000/goapps/hr/photos/a/b.jpg"))
	require.NoError(t, s.DeletePhoto(context.Background(), ""))
	require.NoError(t, s.DeletePhoto(context.Background(), "https://elsewhere.example.com/x.jpg"))

	store.AssertNumberOfCalls(t, "RemoveObject", 1)
}

func TestEnsureBucket(t *testing.T) {
	t.Run("existing bucket", func(t *testing.T) {
		store := new(mockStore)
		store.On("BucketExists", mock.Anything, "goapps").Return(true, nil)

		require.NoError(t, newPhotoStorage(store, "goapps", "", "").ensureBucket(context.Background()))
		store.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("creates bucket and tolerates policy failure", func(t *testing.T) {
		store := new(mockStore)
		store.On("BucketExists", mock.Anything, "goapps").Return(false, nil)
		store.On("MakeBucket", mock.Anything, "goapps", minio.MakeBucketOptions{}).Return(nil)
		store.On("SetBucketPolicy", mock.Anything, "goapps", mock.Anything).Return(errors.New("denied"))

		require.NoError(t, newPhotoStorage(store, "goapps", "", "").ensureBucket(context.Background()))
		store.AssertExpectations(t)
	})
}
