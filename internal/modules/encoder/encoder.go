package encoder

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"urlboard/internal/models"

	"go.uber.org/zap"
)

// ErrImageRead is wrapped by every failure to read an attachment.
var ErrImageRead = errors.New("image read failed")

// Result is the outcome of one encoding.
type Result struct {
	DataURI string
	Err     error
}

// Encoder turns a selected image into a self-contained data URI.
type Encoder struct {
	logger *zap.Logger
}

// New creates an Encoder.
func New(logger *zap.Logger) *Encoder {
	return &Encoder{logger: logger}
}

// Encode reads the attachment in the background and delivers exactly one
// Result on the returned channel.
//
// Parameters:
//   - ctx: Context for cancellation; a canceled read reports ctx.Err().
//   - att: The attachment to read. Its Reader is consumed.
//
// Returns:
//   - A buffered channel receiving a single Result.
func (e *Encoder) Encode(ctx context.Context, att models.Attachment) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		uri, err := e.encode(ctx, att)
		if err != nil {
			e.logger.Warn("image encoding failed",
				zap.String("name", att.Name),
				zap.Error(err))
			out <- Result{Err: err}
			return
		}

		e.logger.Debug("image encoded",
			zap.String("name", att.Name),
			zap.Int("length", len(uri)))
		out <- Result{DataURI: uri}
	}()

	return out
}

func (e *Encoder) encode(ctx context.Context, att models.Attachment) (string, error) {
	if att.Reader == nil {
		return "", fmt.Errorf("%w: %s: no data", ErrImageRead, att.Name)
	}

	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: att.Reader})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s: %v", ErrImageRead, att.Name, err)
	}

	return DataURI(att.ContentType, data), nil
}

// DataURI builds a base64 data URI. An empty or generic content type is
// replaced by the sniffed type of data.
func DataURI(contentType string, data []byte) string {
	mime := strings.TrimSpace(contentType)
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ctxReader stops a read once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
