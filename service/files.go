// Package service holds the file ownership service. It is the only
// place allowed to create or destroy FileUpload rows so the invariant
// "a row's blob exists exactly as long as the row does" can't be
// bypassed from anywhere else.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"ravent/agentic-api/model"
	"ravent/agentic-api/storage"
	"ravent/agentic-api/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound covers both "no such file" and "not your file" so status
// codes can't be used to probe what other users own
var ErrNotFound = errors.New("file not found")

type Files struct {
	DB      *gorm.DB
	Storage storage.Storage
}

func NewFiles(db *gorm.DB, st storage.Storage) *Files {
	return &Files{DB: db, Storage: st}
}

// List returns the given owner's files, newest first. An owner with no
// files gets an empty slice, not an error.
func (f *Files) List(ctx context.Context, ownerID string) ([]model.FileUpload, error) {
	files := []model.FileUpload{}

	err := f.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("uploaded_at desc").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	return files, nil
}

// Upload writes the blob first and the metadata row second. If the row
// insert fails the fresh blob is deleted again before returning, so no
// orphaned blob is left behind and no row ever points at a missing blob.
func (f *Files) Upload(ctx context.Context, ownerID, fileName string, content io.ReadSeeker, size int64) (*model.FileUpload, error) {
	ext := strings.ToLower(path.Ext(fileName))
	storagePath := "uploads/" + util.RandKey(8) + ext

	if err := f.Storage.Save(ctx, storagePath, content, size); err != nil {
		return nil, fmt.Errorf("failed to store blob, %w", err)
	}

	rec := &model.FileUpload{
		OwnerID:      ownerID,
		StoragePath:  storagePath,
		OriginalName: fileName,
		UploadedAt:   time.Now(),
	}

	if err := f.DB.WithContext(ctx).Create(rec).Error; err != nil {
		if delErr := f.Storage.Delete(ctx, storagePath); delErr != nil {
			zap.L().Error("Failed to clean up blob after failed record insert",
				zap.String("path", storagePath),
				zap.Error(delErr),
			)
		}

		return nil, fmt.Errorf("failed to create file record, %w", err)
	}

	return rec, nil
}

// Delete destroys the file with the given ID if, and only if, it
// belongs to ownerID. Missing and foreign files are indistinguishable.
func (f *Files) Delete(ctx context.Context, ownerID string, fileID uint) error {
	var rec model.FileUpload

	err := f.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to look up file record, %w", err)
	}

	return f.deleteRecord(ctx, &rec)
}

// DeleteAllForUser destroys every file a user owns, blobs included.
// Not reachable over HTTP, exists for administrative account removal.
func (f *Files) DeleteAllForUser(ctx context.Context, ownerID string) error {
	var recs []model.FileUpload

	err := f.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&recs).
		Error
	if err != nil {
		return fmt.Errorf("failed to look up user's files, %w", err)
	}

	for i := range recs {
		if err := f.deleteRecord(ctx, &recs[i]); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	return nil
}

// deleteRecord is the single exit point for FileUpload rows. Blob goes
// first (absent blobs are tolerated, the metadata deletion is the
// operation of record), row second. Racing deletes are settled by the
// row delete's affected count, the loser observes ErrNotFound.
func (f *Files) deleteRecord(ctx context.Context, rec *model.FileUpload) error {
	if err := f.Storage.Delete(ctx, rec.StoragePath); err != nil {
		return fmt.Errorf("failed to delete blob, %w", err)
	}

	res := f.DB.WithContext(ctx).
		Where("id = ?", rec.ID).
		Delete(model.FileUpload{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete file record, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
