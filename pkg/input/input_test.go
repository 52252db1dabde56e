package input

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_ReadLine(t *testing.T) {
	t.Parallel()

	r := NewReader(strings.NewReader("show\r\nundo\nlast"))

	for _, want := range []string{"show", "undo", "last"} {
		got, err := r.ReadLine(t.Context())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadLine(t.Context())
	assert.ErrorIs(t, err, io.EOF)

	_, err = r.ReadLine(t.Context())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_Cancelled(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := NewReader(pr).ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadLine(t *testing.T) {
	t.Parallel()

	got, err := ReadLine(t.Context(), strings.NewReader("y\n"))
	require.NoError(t, err)
	assert.Equal(t, "y", got)
}
