package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAppendsSingleTerminator(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)

	require.NoError(t, enc.Encode(context.Background(), "done (1 rows affected)"))
	assert.Equal(t, []byte("done (1 rows affected)\x00"), buf.Bytes())
}

func TestRoundTrip(t *testing.T) {
	messages := []string{
		"SELECT * FROM users",
		"",
		"x\n-\n1",
		"INSERT INTO t VALUES ('héllo wörld ✓')",
		strings.Repeat("a", 10000),
	}

	for _, msg := range messages {
		var buf bytes.Buffer
		require.NoError(t, NewEncoder(&buf).Encode(context.Background(), msg))

		got, err := NewDecoder(&buf, 0).Decode(context.Background())
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
}

func TestDecodeSequentialFramesKeepOrder(t *testing.T) {
	stream := AppendFrame(nil, "first")
	stream = AppendFrame(stream, "second")
	stream = AppendFrame(stream, "third")

	// One byte per read exercises reassembly across receives.
	dec := NewDecoder(iotest.OneByteReader(bytes.NewReader(stream)), 0)
	for _, want := range []string{"first", "second", "third"} {
		got, err := dec.Decode(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := dec.Decode(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeEndOfStream(t *testing.T) {
	t.Run("empty stream", func(t *testing.T) {
		_, err := NewDecoder(bytes.NewReader(nil), 0).Decode(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("partial frame", func(t *testing.T) {
		_, err := NewDecoder(strings.NewReader("SELECT 1"), 0).Decode(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})
}

func TestDecodeReplacesInvalidUTF8(t *testing.T) {
	stream := []byte{'a', 0xff, 'b', 0x00}

	got, err := NewDecoder(bytes.NewReader(stream), 0).Decode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFDb", got)
}

func TestDecodeFrameLimit(t *testing.T) {
	stream := AppendFrame(nil, "1234")
	got, err := NewDecoder(bytes.NewReader(stream), 4).Decode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1234", got)

	stream = AppendFrame(nil, strings.Repeat("x", 8192))
	_, err = NewDecoder(bytes.NewReader(stream), 16).Decode(context.Background())
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestDecodeHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDecoder(strings.NewReader("SELECT 1\x00"), 0).Decode(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	err = NewEncoder(io.Discard).Encode(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodePropagatesReadErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewDecoder(iotest.ErrReader(boom), 0).Decode(context.Background())
	assert.ErrorIs(t, err, boom)
}
