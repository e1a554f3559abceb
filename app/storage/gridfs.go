package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trucksigns/truck-signs-api/models"
)

// GridFSStore keeps blobs in a MongoDB GridFS bucket, so every API replica
// serves the same images without a shared filesystem.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database, bucketName string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket %s: %w", bucketName, err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Put(_ context.Context, name, contentType string, r io.Reader) error {
	if err := validName(name); err != nil {
		return err
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err := s.bucket.UploadFromStream(name, r, opts); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}
	return nil
}

func (s *GridFSStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if err := validName(name); err != nil {
		return nil, "", err
	}

	cursor, err := s.bucket.Find(bson.D{{Key: "filename", Value: name}})
	if err != nil {
		return nil, "", err
	}
	var files []struct {
		Metadata struct {
			ContentType string `bson:"contentType"`
		} `bson:"metadata"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", fmt.Errorf("%s: %w", name, models.ErrBlobNotFound)
	}

	stream, err := s.bucket.OpenDownloadStreamByName(name)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", fmt.Errorf("%s: %w", name, models.ErrBlobNotFound)
	}
	if err != nil {
		return nil, "", err
	}

	contentType := files[0].Metadata.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return stream, contentType, nil
}

func (s *GridFSStore) Delete(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}

	cursor, err := s.bucket.Find(bson.D{{Key: "filename", Value: name}})
	if err != nil {
		return err
	}
	var files []struct {
		ID any `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return err
	}
	for _, f := range files {
		if err := s.bucket.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete %s: %w", name, err)
		}
	}
	return nil
}
