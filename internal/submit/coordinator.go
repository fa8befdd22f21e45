// Package submit coordinates a complete application submission: field
// validation, the three asset uploads and the allocation of a gap-free
// application number.
package submit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mgmcet/admission-portal/internal/models"
	"github.com/mgmcet/admission-portal/internal/objectstore"
	"github.com/mgmcet/admission-portal/internal/storage"
	"github.com/mgmcet/admission-portal/internal/validate"
)

// UploadError reports which asset slot failed to reach object storage.
// A failed upload stops the submission before any record is written.
type UploadError struct {
	Slot string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Slot, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Coordinator runs the submission pipeline. Steps are strictly ordered:
// nothing is uploaded before validation passes, and nothing is persisted
// before all three uploads succeed.
type Coordinator struct {
	repo     storage.Repository
	uploader objectstore.Uploader
	schema   *validate.Schema
}

// NewCoordinator wires the pipeline together.
func NewCoordinator(repo storage.Repository, uploader objectstore.Uploader, schema *validate.Schema) *Coordinator {
	return &Coordinator{
		repo:     repo,
		uploader: uploader,
		schema:   schema,
	}
}

// Submit validates the submission, uploads the three images concurrently
// and allocates the application record. Validation failures come back as
// *validate.Error, upload failures as *UploadError; both leave no trace in
// storage.
func (c *Coordinator) Submit(ctx context.Context, sub *models.Submission) (*models.Application, error) {
	if err := c.schema.ValidateSubmission(sub); err != nil {
		return nil, err
	}

	var photoURL, parentSigURL, applicantSigURL string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		photoURL, err = c.uploadAsset(gctx, "photo", sub.Photo)
		return err
	})
	g.Go(func() error {
		var err error
		parentSigURL, err = c.uploadAsset(gctx, "parentSignature", sub.ParentSignature)
		return err
	})
	g.Go(func() error {
		var err error
		applicantSigURL, err = c.uploadAsset(gctx, "applicantSignature", sub.ApplicantSignature)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	form := sub.Form
	form.Photo = photoURL
	form.ParentSignature = parentSigURL
	form.ApplicantSignature = applicantSigURL

	app := &models.Application{
		CandidateName: form.CandidateName,
		Form:          form,
		Subjects:      sub.Subjects,
		EntranceMarks: sub.Entrance,
	}

	appID, err := c.repo.AllocateApplication(ctx, app)
	if err != nil {
		return nil, err
	}

	slog.Info("application submitted",
		"app_id", appID,
		"candidate", app.CandidateName,
		"subjects", len(app.Subjects),
		"entrance", app.HasEntrance())

	return app, nil
}

// uploadAsset pushes one image under a fresh object key and returns its
// retrieval URL.
func (c *Coordinator) uploadAsset(ctx context.Context, slot string, file models.FileUpload) (string, error) {
	contentType := sniffContentType(file.Data)
	key := "applications/" + uuid.NewString() + extensionFor(contentType)

	url, err := c.uploader.Upload(ctx, key, contentType, bytes.NewReader(file.Data))
	if err != nil {
		return "", &UploadError{Slot: slot, Err: err}
	}
	return url, nil
}

func sniffContentType(data []byte) string {
	limit := len(data)
	if limit > 512 {
		limit = 512
	}
	return http.DetectContentType(data[:limit])
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
