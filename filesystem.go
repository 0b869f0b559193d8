package bucketfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Filter wraps an Action. op names the operation: "write", "read" or "delete".
type Filter func(op string, next Action) Action

// Chain applies filters to act. The first filter is the outermost.
func Chain(op string, act Action, filters ...Filter) Action {
	for i := len(filters) - 1; i >= 0; i-- {
		act = filters[i](op, act)
	}
	return act
}

// LogFilter logs every action. Failures are logged at error level, successes at debug.
func LogFilter(logger *slog.Logger) Filter {
	if logger == nil {
		logger = slog.Default()
	}
	return func(op string, next Action) Action {
		return func(ctx context.Context, self ClientProvider, p Params) (*Result, error) {
			start := time.Now()
			res, err := next(ctx, self, p)
			if err != nil {
				logger.ErrorContext(ctx, "storage action failed", "op", op, "filename", p.Filename, "err", err)
				return res, err
			}
			logger.DebugContext(ctx, "storage action", "op", op, "filename", p.Filename, "duration", time.Since(start))
			return res, nil
		}
	}
}

// Filesystem invokes adapter Actions immediately, passing them through its filters.
type Filesystem struct {
	adapter *Adapter
	filters []Filter
}

// NewFilesystem creates a Filesystem over adapter.
func NewFilesystem(adapter *Adapter, filters ...Filter) *Filesystem {
	return &Filesystem{
		adapter: adapter,
		filters: filters,
	}
}

// Adapter returns the underlying adapter.
func (f *Filesystem) Adapter() *Adapter {
	return f.adapter
}

// Write uploads data to filename.
func (f *Filesystem) Write(ctx context.Context, filename string, data io.Reader, opts WriteOptions) (*Result, error) {
	return f.run(ctx, "write", f.adapter.Write(filename, data, opts), Params{Filename: filename, Data: data})
}

// Read fetches filename. The caller closes Result.Body.
func (f *Filesystem) Read(ctx context.Context, filename string, opts ReadOptions) (*Result, error) {
	return f.run(ctx, "read", f.adapter.Read(filename, opts), Params{Filename: filename})
}

// Delete removes filename.
func (f *Filesystem) Delete(ctx context.Context, filename string, opts DeleteOptions) (*Result, error) {
	return f.run(ctx, "delete", f.adapter.Delete(filename, opts), Params{Filename: filename})
}

// URL returns the public URL of path.
func (f *Filesystem) URL(path string, opts URLOptions) (string, error) {
	return f.adapter.URL(path, opts)
}

// SignURL returns a signed URL for path.
func (f *Filesystem) SignURL(path string, opts SignOptions) (string, error) {
	return f.adapter.SignURL(path, opts)
}

func (f *Filesystem) run(ctx context.Context, op string, act Action, p Params) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if p.Filename == "" {
		return nil, fmt.Errorf("%s: %w: filename cannot be empty", op, ErrInvalidInput)
	}
	return Chain(op, act, f.filters...)(ctx, f.adapter, p)
}
