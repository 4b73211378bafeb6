package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/hbnb/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSession_PersistsAcrossSessions(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "file.json")
	cfg.Prompt = ""
	plain := false

	var out bytes.Buffer
	err := RunSession(context.Background(), cfg, Session{
		In:          strings.NewReader("create Amenity\nquit\n"),
		Out:         &out,
		Interactive: &plain,
	})
	require.NoError(t, err)
	id := strings.TrimSpace(out.String())
	require.NotEmpty(t, id)

	out.Reset()
	err = RunSession(context.Background(), cfg, Session{
		In:          strings.NewReader("count Amenity\nshow Amenity " + id + "\n"),
		Out:         &out,
		Interactive: &plain,
	})
	require.NoError(t, err)

	lines := strings.Split(out.String(), "\n")
	assert.Equal(t, "1", lines[0])
	assert.Contains(t, lines[1], "[Amenity] ("+id+")")
}

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := NewInterruptibleReader(strings.NewReader("abc"), cancel)

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))

	close(cancel)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.NoError(t, handleExecutionError(errors.Join(io.ErrUnexpectedEOF, ErrInterrupted)))

	boom := errors.New("boom")
	assert.ErrorIs(t, handleExecutionError(boom), boom)
}
