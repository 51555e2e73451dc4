package protocol

import (
	"bufio"
	"context"
	"errors"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// Terminator ends every frame in both directions. It must not appear inside
// a frame's text; a message containing it is cut at the first occurrence.
const Terminator byte = 0x00

// ErrFrameTooLarge is returned when a frame exceeds the decoder's limit.
var ErrFrameTooLarge = errors.New("frame exceeds size limit")

// Encoder writes terminator-framed text messages.
type Encoder struct {
	writer io.Writer
}

// Decoder reads terminator-framed text messages.
type Decoder struct {
	reader   *bufio.Reader
	maxBytes int
}

// NewEncoder creates a new encoder for the given writer.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: w}
}

// NewDecoder creates a new decoder for the given reader. A maxBytes of zero
// or less leaves frame length unbounded.
func NewDecoder(r io.Reader, maxBytes int) *Decoder {
	return &Decoder{reader: bufio.NewReader(r), maxBytes: maxBytes}
}

// AppendFrame appends text followed by the terminator to dst.
func AppendFrame(dst []byte, text string) []byte {
	dst = append(dst, text...)
	return append(dst, Terminator)
}

// Encode writes text and its terminator with a single write.
func (e *Encoder) Encode(ctx context.Context, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, err := e.writer.Write(AppendFrame(make([]byte, 0, len(text)+1), text))
	return err
}

// Decode reads the next frame from the stream. It returns io.EOF when the
// peer closes before a terminator arrives; any partial frame is dropped.
// Bytes that are not valid UTF-8 are replaced with U+FFFD.
func (d *Decoder) Decode(ctx context.Context) (string, error) {
	var frame []byte
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		chunk, err := d.reader.ReadSlice(Terminator)
		frame = append(frame, chunk...)
		if d.maxBytes > 0 && len(frame) > d.maxBytes+1 {
			return "", ErrFrameTooLarge
		}

		switch {
		case err == nil:
			return decodeText(frame[:len(frame)-1]), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			return "", io.EOF
		default:
			return "", err
		}
	}
}

func decodeText(raw []byte) string {
	text, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(text)
}
