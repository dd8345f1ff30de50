// Package codec converts shows to and from their JSON document form.
//
// The document stores bare file names; Decode rebuilds each track's asset
// path from a base directory supplied by the caller. Encoding and decoding
// do no I/O.
//
//	{
//	  "show_name": "Spring Revue",
//	  "settings": {"skip_increment_seconds": 5, "marker_nudge_increment_ms": 100},
//	  "tracks": [
//	    {"filename": "overture.mp3", "duration_ms": 183000,
//	     "markers": [{"name": "Cue 1", "timestamp_ms": 1500}]}
//	  ]
//	}
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/model"
)

type showDoc struct {
	ShowName *string      `json:"show_name"`
	Settings *settingsDoc `json:"settings,omitempty"`
	Tracks   []trackDoc   `json:"tracks"`
}

type settingsDoc struct {
	SkipIncrementSeconds   *int `json:"skip_increment_seconds,omitempty"`
	MarkerNudgeIncrementMS *int `json:"marker_nudge_increment_ms,omitempty"`
}

type trackDoc struct {
	Filename   *string     `json:"filename"`
	AssetFile  string      `json:"asset_file,omitempty"`
	DurationMS *int64      `json:"duration_ms,omitempty"`
	Markers    []markerDoc `json:"markers"`
}

type markerDoc struct {
	Name        *string `json:"name"`
	TimestampMS *int64  `json:"timestamp_ms"`
}

// Encode renders a show as an indented JSON document.
//
// asset_file is written only for tracks whose stored file name differs from
// their display filename, which happens after a collision rename.
func Encode(show *model.Show) ([]byte, error) {
	if show == nil {
		return nil, apperr.Invalid("encode show", errors.New("nil show"))
	}

	name := show.Name()
	skip := show.Settings().SkipIncrementSeconds()
	nudge := show.Settings().MarkerNudgeIncrementMS()
	doc := showDoc{
		ShowName: &name,
		Settings: &settingsDoc{SkipIncrementSeconds: &skip, MarkerNudgeIncrementMS: &nudge},
		Tracks:   make([]trackDoc, 0, show.TrackCount()),
	}

	for _, t := range show.Tracks() {
		filename := t.Filename()
		td := trackDoc{
			Filename: &filename,
			Markers:  make([]markerDoc, 0, t.MarkerCount()),
		}
		if stored := filepath.Base(t.AssetPath()); t.AssetPath() != "" && stored != filename {
			td.AssetFile = stored
		}
		if ms, ok := t.Duration(); ok {
			td.DurationMS = &ms
		}
		for _, m := range t.Markers() {
			mName, ts := m.Name(), m.TimestampMS()
			td.Markers = append(td.Markers, markerDoc{Name: &mName, TimestampMS: &ts})
		}
		doc.Tracks = append(doc.Tracks, td)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, apperr.Invalid("encode show", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document and rebuilds the show graph. Each track's asset
// path is assetBase joined with its stored file name.
//
// Missing or mistyped required fields fail with apperr.KindMalformedDocument;
// values the model rejects fail with apperr.KindInvalidData. Unknown fields
// are ignored.
func Decode(data []byte, assetBase string) (*model.Show, error) {
	const op = "decode show"

	var doc showDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Malformed(op, "", err)
	}
	if doc.ShowName == nil {
		return nil, apperr.Malformed(op, "", errors.New(`missing "show_name"`))
	}

	show, err := model.NewShow(*doc.ShowName)
	if err != nil {
		return nil, err
	}

	settings, err := decodeSettings(doc.Settings)
	if err != nil {
		return nil, err
	}
	if err := show.SetSettings(settings); err != nil {
		return nil, err
	}

	for i, td := range doc.Tracks {
		track, err := decodeTrack(td, assetBase)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		show.AddTrack(track)
	}
	return show, nil
}

func decodeSettings(sd *settingsDoc) (model.Settings, error) {
	skip, nudge := model.DefaultSkipIncrementSeconds, model.DefaultMarkerNudgeIncrementMS
	if sd != nil {
		if sd.SkipIncrementSeconds != nil {
			skip = *sd.SkipIncrementSeconds
		}
		if sd.MarkerNudgeIncrementMS != nil {
			nudge = *sd.MarkerNudgeIncrementMS
		}
	}
	return model.NewSettings(skip, nudge)
}

func decodeTrack(td trackDoc, assetBase string) (*model.Track, error) {
	if td.Filename == nil {
		return nil, apperr.Malformed("decode track", "", errors.New(`missing "filename"`))
	}

	stored := *td.Filename
	if td.AssetFile != "" {
		stored = td.AssetFile
	}
	track, err := model.NewTrack(*td.Filename, filepath.Join(assetBase, filepath.Base(stored)))
	if err != nil {
		return nil, err
	}

	if td.DurationMS != nil {
		if err := track.SetDuration(*td.DurationMS); err != nil {
			return nil, err
		}
	}

	for j, md := range td.Markers {
		if md.Name == nil || md.TimestampMS == nil {
			return nil, apperr.Malformed("decode marker", "",
				fmt.Errorf(`marker %d: "name" and "timestamp_ms" are required`, j))
		}
		m, err := model.NewMarker(*md.Name, *md.TimestampMS)
		if err != nil {
			return nil, err
		}
		if err := track.AddMarker(m); err != nil {
			return nil, err
		}
	}
	return track, nil
}
