// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort         = "8080"
	DefaultDBPath       = "batchtranscriber.db"
	DefaultMediaDir     = "media"
	DefaultConcurrency  = 3
	MinConcurrency      = 1
	MaxConcurrency      = 10
	DefaultPollInterval = 1 * time.Second
	DefaultHTTPTimeout  = 30 * time.Second
	TranscribeTimeout   = 10 * time.Minute
	DefaultRetryCount   = 3
	DefaultRetryBase    = 1 * time.Second
)

// Remote endpoints
const (
	OEmbedEndpoint      = "https://www.youtube.com/oembed"
	WatchURLPrefix      = "https://www.youtube.com/watch?v="
	ThumbnailURLPattern = "https://img.youtube.com/vi/%s/hqdefault.jpg"
	SearchAPIEndpoint   = "https://www.searchapi.io/api/v1/search"
	GeminiEndpoint      = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	DefaultGeminiModel  = "gemini-2.0-flash"
)

// Refinement input is capped so huge caption dumps stay within prompt limits.
const MaxRefineInputChars = 30000

// Minimum cleaned caption length considered a usable transcript.
const MinCaptionLength = 5

// Media upload limit
const MaxUploadBytes = 100 << 20 // 100MB

// MIME Types
const (
	MimeTypeMP3  = "audio/mpeg"
	MimeTypeMP4  = "video/mp4"
	MimeTypeWebM = "video/webm"
	MimeTypeWAV  = "audio/wav"
	MimeTypeFLAC = "audio/flac"
	MimeTypeM4A  = "audio/mp4"
)

// File Extensions
const (
	ExtMP3  = ".mp3"
	ExtMP4  = ".mp4"
	ExtFLAC = ".flac"
	ExtWAV  = ".wav"
	ExtWebM = ".webm"
	ExtM4A  = ".m4a"
)

// Database
const (
	JobsTable    = "jobs"
	LibraryTable = "library_items"
)

// File Permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)

// Listing caps
const (
	MaxListedJobs    = 100
	MaxLibraryItems  = 500
	ProgressComplete = 100
)
