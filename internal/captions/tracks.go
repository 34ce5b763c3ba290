package captions

import "strings"

// Track is one caption stream option for a video, in one language and
// authorship kind.
type Track struct {
	Language string
	Label    string
	Kind     string
	URL      string
}

// IsAutoGenerated detects machine-authored tracks via the explicit kind
// marker or a label substring. Absence of both means manually authored.
func (t Track) IsAutoGenerated() bool {
	if t.Kind == "asr" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Label), "auto-generated")
}

// IsEnglish matches by language code prefix or label.
func (t Track) IsEnglish() bool {
	if strings.HasPrefix(strings.ToLower(t.Language), "en") {
		return true
	}
	return strings.Contains(strings.ToLower(t.Label), "english")
}

// SelectBestTrack applies the shared selection policy: manually authored
// English, then manually authored in any language, then auto-generated
// English, then whatever comes first.
func SelectBestTrack(tracks []Track) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	for _, t := range tracks {
		if !t.IsAutoGenerated() && t.IsEnglish() {
			return t, true
		}
	}
	for _, t := range tracks {
		if !t.IsAutoGenerated() {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.IsEnglish() {
			return t, true
		}
	}
	return tracks[0], true
}
