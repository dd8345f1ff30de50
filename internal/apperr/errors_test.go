package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		err  error
		want error
		kind Kind
	}{
		{NotFound("load show", "/shows/a.json", fs.ErrNotExist), ErrNotFound, KindNotFound},
		{UnsupportedFormat("copy asset", "notes.txt", nil), ErrUnsupportedFormat, KindUnsupportedFormat},
		{Malformed("decode show", "", errors.New("missing show_name")), ErrMalformedDocument, KindMalformedDocument},
		{Invalid("new marker", errors.New("empty name")), ErrInvalidData, KindInvalidData},
		{IO("write show", "/x", errors.New("disk full")), ErrIOFailure, KindIOFailure},
		{Exhausted("unique name", "song.mp3", nil), ErrResourceExhausted, KindResourceExhausted},
		{Exists("import show", "Spring Revue"), ErrAlreadyExists, KindAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
			assert.Equal(t, tt.kind, KindOf(tt.err))

			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.want)
			assert.Equal(t, tt.kind, KindOf(wrapped))
		})
	}
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	err := NotFound("load show", "/shows/a.json", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrIOFailure)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "copy asset /a/b.txt: unsupported format",
		UnsupportedFormat("copy asset", "/a/b.txt", nil).Error())
	assert.Equal(t, "new marker: empty name",
		Invalid("new marker", errors.New("empty name")).Error())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
