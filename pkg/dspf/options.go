package dspf

import (
	"encoding/binary"

	"go.uber.org/zap"
)

// DefaultBufferLimit is the largest data section a Reader loads into memory
// in one read.
const DefaultBufferLimit = 4 << 20

// Option configures header codecs, readers and writers.
type Option func(*options)

type options struct {
	order       binary.ByteOrder
	bufferLimit int64
	log         *zap.Logger
}

func buildOptions(opts []Option) options {
	o := options{
		order:       binary.LittleEndian,
		bufferLimit: DefaultBufferLimit,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithByteOrder sets the byte order of the header's integer and float
// fields. Files written on x86 hosts are little-endian, the default.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.order = order
		}
	}
}

// WithBufferLimit sets the largest data section a Reader buffers in memory.
// Zero or a negative limit forces direct reads from the stream.
func WithBufferLimit(n int64) Option {
	return func(o *options) {
		o.bufferLimit = n
	}
}

// WithLogger attaches a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
