// Package mediameta reads display metadata out of uploaded media files.
// Everything here is best-effort: an unreadable or untagged file simply
// yields an empty Info and the job keeps its upload filename.
package mediameta

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// Info holds the tag data a transcription job can display.
type Info struct {
	Title       string
	Artist      string
	Picture     []byte
	PictureMIME string
}

// Extract reads embedded tags from the file at path.
func Extract(path string) (Info, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return extractMP3(path)
	case ".flac":
		return extractFLAC(path)
	default:
		return Info{}, nil
	}
}

// DisplayName combines title and artist into a queue label, falling back to
// the given default when the file carries no title tag.
func DisplayName(info Info, fallback string) string {
	if info.Title == "" {
		return fallback
	}
	if info.Artist != "" {
		return info.Artist + " - " + info.Title
	}
	return info.Title
}

func extractMP3(path string) (Info, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return Info{}, fmt.Errorf("open id3 tag: %w", err)
	}
	defer tag.Close()

	info := Info{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
	}

	for _, frame := range tag.GetFrames(tag.CommonID("Attached picture")) {
		pic, ok := frame.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		if len(pic.Picture) > 0 {
			info.Picture = pic.Picture
			info.PictureMIME = pic.MimeType
			break
		}
	}
	return info, nil
}

func extractFLAC(path string) (Info, error) {
	f, err := flac.ParseFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("parse flac: %w", err)
	}

	var info Info
	for _, block := range f.Meta {
		switch block.Type {
		case flac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			if titles, err := cmt.Get(flacvorbis.FIELD_TITLE); err == nil && len(titles) > 0 {
				info.Title = strings.TrimSpace(titles[0])
			}
			if artists, err := cmt.Get(flacvorbis.FIELD_ARTIST); err == nil && len(artists) > 0 {
				info.Artist = strings.TrimSpace(artists[0])
			}
		case flac.Picture:
			if info.Picture != nil {
				continue
			}
			pic, err := flacpicture.ParseFromMetaDataBlock(*block)
			if err != nil {
				continue
			}
			if len(pic.ImageData) > 0 {
				info.Picture = pic.ImageData
				info.PictureMIME = pic.MIME
			}
		}
	}
	return info, nil
}
