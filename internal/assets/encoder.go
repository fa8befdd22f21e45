package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// maxFetchBytes bounds how much of a remote asset is read. Uploaded images
// are already size-limited; this only guards against a misbehaving remote.
const maxFetchBytes = 10 << 20

// InlineImage is a self-contained embeddable image: raw bytes plus the
// format name the PDF layer expects ("JPEG" or "PNG").
type InlineImage struct {
	Data   []byte
	Format string
}

// Source names either raw bytes (pre-upload) or a retrieval URL (the
// persisted form of an asset). At most one side is set.
type Source struct {
	Data []byte
	URL  string
}

// Empty reports whether the source holds nothing to encode.
func (s Source) Empty() bool {
	return len(s.Data) == 0 && s.URL == ""
}

// Resolved holds the three settled asset encodings for one record. A nil
// slot means the renderer draws a placeholder instead.
type Resolved struct {
	Photo              *InlineImage
	ParentSignature    *InlineImage
	ApplicantSignature *InlineImage
}

// Encoder converts asset sources into inline images. Failures never
// propagate as errors: a bad source resolves to nil and the document
// degrades to a placeholder.
type Encoder struct {
	httpClient *http.Client
}

// NewEncoder creates an encoder with a bounded fetch timeout.
func NewEncoder() *Encoder {
	return &Encoder{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Encode resolves a single source. Empty sources and every failure mode
// yield nil.
func (e *Encoder) Encode(ctx context.Context, src Source) *InlineImage {
	if src.Empty() {
		return nil
	}
	if src.URL != "" {
		return e.encodeURL(ctx, src.URL)
	}
	return encodeBytes(src.Data)
}

// EncodeAll resolves the photo and both signatures concurrently and waits
// for all three to settle.
func (e *Encoder) EncodeAll(ctx context.Context, photo, parentSig, applicantSig Source) *Resolved {
	var res Resolved
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		res.Photo = e.Encode(ctx, photo)
	}()
	go func() {
		defer wg.Done()
		res.ParentSignature = e.Encode(ctx, parentSig)
	}()
	go func() {
		defer wg.Done()
		res.ApplicantSignature = e.Encode(ctx, applicantSig)
	}()
	wg.Wait()

	return &res
}

func (e *Encoder) encodeURL(ctx context.Context, url string) *InlineImage {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Warn("asset fetch skipped", "url", url, "error", err)
		return nil
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		slog.Warn("asset fetch failed", "url", url, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("asset fetch failed", "url", url, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		slog.Warn("asset read failed", "url", url, "error", err)
		return nil
	}

	return encodeBytes(data)
}

func encodeBytes(data []byte) *InlineImage {
	if len(data) == 0 {
		return nil
	}

	format, err := detectFormat(data)
	if err != nil {
		slog.Warn("asset format not embeddable", "error", err)
		return nil
	}

	return &InlineImage{Data: data, Format: format}
}

func detectFormat(data []byte) (string, error) {
	limit := len(data)
	if limit > 512 {
		limit = 512
	}

	switch http.DetectContentType(data[:limit]) {
	case "image/jpeg":
		return "JPEG", nil
	case "image/png":
		return "PNG", nil
	default:
		return "", fmt.Errorf("unsupported image content")
	}
}
