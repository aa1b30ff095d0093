package resource

import (
	"context"
	"io"
)

// RateLimitedReader wraps an io.Reader with IO rate limiting.
type RateLimitedReader struct {
	r   io.Reader
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

func (r *RateLimitedReader) Read(p []byte) (n int, err error) {
	// The actual read size is unknown up front, so reserve for the
	// maximum potential read.
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// WrapReader returns r wrapped with IO rate limiting, or r unchanged
// when no IO limit is configured.
func (c *Controller) WrapReader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return NewRateLimitedReader(ctx, r, c)
}
