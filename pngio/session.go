package pngio

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zlib"
)

var live atomic.Int64

// LiveSessions returns the number of Readers and Writers created but not
// yet closed.
func LiveSessions() int64 {
	return live.Load()
}

type options struct {
	logger *slog.Logger
	level  int
}

type Option func(*options)

// WithLogger sets the destination of non-fatal warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCompressionLevel sets the zlib level used by a Writer.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

func buildOptions(opts []Option) options {
	o := options{
		level: zlib.DefaultCompression,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", "pngio")
	return o
}

// scratch holds the row buffers of one session.
type scratch struct {
	cr, pr []byte
	// cand holds one filtered candidate row per filter type when writing.
	cand [nFilter][]byte
}

var scratchPool = sync.Pool{
	New: func() any {
		return new(scratch)
	},
}

func getScratch() *scratch {
	return scratchPool.Get().(*scratch)
}

func (s *scratch) release() {
	s.cr, s.pr = s.cr[:0], s.pr[:0]
	scratchPool.Put(s)
}

// rows returns zeroed current and previous row buffers of n bytes.
func (s *scratch) rows(n int) ([]byte, []byte) {
	s.cr = grow(s.cr, n)
	s.pr = grow(s.pr, n)
	clear(s.cr)
	clear(s.pr)
	return s.cr, s.pr
}

func grow(b []byte, n int) []byte {
	if cap(b) < n {
		return make([]byte, n)
	}
	return b[:n]
}
