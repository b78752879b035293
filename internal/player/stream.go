package player

import (
	"errors"
	"fmt"
	"io"
)

// seekBuffer wraps a sequential reader (an HTTP response body) so decoders
// can seek backward. Bytes are retained in memory as they are read; forward
// seeks read through. Signed stream URLs are single-use, so re-requesting
// with a Range header is not an option.
type seekBuffer struct {
	src io.Reader
	buf []byte
	pos int64
	eof bool
}

func newSeekBuffer(src io.Reader) *seekBuffer {
	return &seekBuffer{src: src}
}

func (b *seekBuffer) Read(p []byte) (int, error) {
	if b.pos < int64(len(b.buf)) {
		n := copy(p, b.buf[b.pos:])
		b.pos += int64(n)
		return n, nil
	}
	if b.eof {
		return 0, io.EOF
	}
	n, err := b.src.Read(p)
	if n > 0 {
		b.buf = append(b.buf, p[:n]...)
		b.pos += int64(n)
	}
	if errors.Is(err, io.EOF) {
		b.eof = true
		if n > 0 {
			return n, nil
		}
	}
	return n, err
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.pos + offset
	case io.SeekEnd:
		if err := b.fill(); err != nil {
			return b.pos, err
		}
		target = int64(len(b.buf)) + offset
	default:
		return b.pos, fmt.Errorf("seek buffer: bad whence %d", whence)
	}
	if target < 0 {
		return b.pos, errors.New("seek buffer: negative position")
	}
	// Forward seeks past what we have buffered read through the source.
	for target > int64(len(b.buf)) && !b.eof {
		chunk := make([]byte, 32*1024)
		n, err := b.src.Read(chunk)
		if n > 0 {
			b.buf = append(b.buf, chunk[:n]...)
		}
		if errors.Is(err, io.EOF) {
			b.eof = true
			break
		}
		if err != nil {
			return b.pos, err
		}
	}
	if target > int64(len(b.buf)) {
		target = int64(len(b.buf))
	}
	b.pos = target
	return b.pos, nil
}

// fill drains the source to the end.
func (b *seekBuffer) fill() error {
	for !b.eof {
		chunk := make([]byte, 64*1024)
		n, err := b.src.Read(chunk)
		if n > 0 {
			b.buf = append(b.buf, chunk[:n]...)
		}
		if errors.Is(err, io.EOF) {
			b.eof = true
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *seekBuffer) Close() error {
	if c, ok := b.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
