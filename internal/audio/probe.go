package audio

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
)

// lengthFrameID is the ID3 frame holding the audio length in milliseconds.
const lengthFrameID = "TLEN"

// DurationProber reports the length of an audio file.
//
// ok is false when the file carries no usable length; that is not an error.
type DurationProber interface {
	ProbeDuration(path string) (ms int64, ok bool, err error)
}

// ID3Prober reads the TLEN frame of an ID3v2 tag.
//
// Files without a tag, or with a missing or unparsable TLEN frame, report
// ok == false. Decoding audio frames to measure length is out of scope.
//
// Example:
//
//	ms, ok, err := audio.ID3Prober{}.ProbeDuration("/data/shows/Revue/audio/overture.mp3")
//	if err == nil && ok {
//	    _ = track.SetDuration(ms)
//	}
type ID3Prober struct{}

// ProbeDuration implements DurationProber.
func (ID3Prober) ProbeDuration(path string) (int64, bool, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, err
		}
		// Not an ID3 container we understand.
		return 0, false, nil
	}
	defer tag.Close()

	frame := tag.GetTextFrame(lengthFrameID)
	text := strings.TrimSpace(strings.TrimRight(frame.Text, "\x00"))
	if text == "" {
		return 0, false, nil
	}

	ms, err := strconv.ParseInt(text, 10, 64)
	if err != nil || ms < 0 {
		return 0, false, nil
	}
	return ms, true, nil
}

// NoProber never reports a duration.
type NoProber struct{}

// ProbeDuration implements DurationProber.
func (NoProber) ProbeDuration(string) (int64, bool, error) {
	return 0, false, nil
}
