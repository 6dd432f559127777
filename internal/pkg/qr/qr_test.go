package qr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := Encode(Payload{SubmissionID: "a1b2c3"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"submission_id":"a1b2c3"}`, raw)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3", decoded.SubmissionID)
}

func TestEncodeEmptyPayload(t *testing.T) {
	_, err := Encode(Payload{})
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := Decode("not json")
	assert.Error(t, err)

	_, err = Decode(`{"submission_id":""}`)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Decode(`{}`)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestWriteImage(t *testing.T) {
	dir := t.TempDir()

	name, err := WriteImage(Payload{SubmissionID: "a1b2c3"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "qr-a1b2c3.png", name)

	info, err := os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteImageEmptyPayload(t *testing.T) {
	_, err := WriteImage(Payload{}, t.TempDir())
	assert.ErrorIs(t, err, ErrEmptyPayload)
}
