package core

import (
	"path/filepath"
	"strings"
)

// ContentType is the category a submission is analyzed as.
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentDocument ContentType = "document"
	ContentImage    ContentType = "image"
	ContentAudio    ContentType = "audio"
	ContentVideo    ContentType = "video"
	ContentUnknown  ContentType = "unknown"
)

var extensionTypes = map[string]ContentType{
	"txt":  ContentText,
	"md":   ContentText,
	"docx": ContentText,
	"pdf":  ContentDocument,
	"jpg":  ContentImage,
	"jpeg": ContentImage,
	"png":  ContentImage,
	"gif":  ContentImage,
	"bmp":  ContentImage,
	"webp": ContentImage,
	"mp3":  ContentAudio,
	"wav":  ContentAudio,
	"ogg":  ContentAudio,
	"flac": ContentAudio,
	"m4a":  ContentAudio,
	"mp4":  ContentVideo,
	"avi":  ContentVideo,
	"mov":  ContentVideo,
	"mkv":  ContentVideo,
	"wmv":  ContentVideo,
	"flv":  ContentVideo,
}

// Classify maps a path or file name to a content type using only its
// extension. Matching is case-insensitive; anything unrecognized is unknown.
func Classify(name string) ContentType {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return ContentUnknown
	}
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}
	return ContentUnknown
}

// ParseContentType resolves an explicit type name. Portuguese names used by
// older clients are accepted too.
func ParseContentType(s string) ContentType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "texto":
		return ContentText
	case "document", "documento", "pdf":
		return ContentDocument
	case "image", "imagem":
		return ContentImage
	case "audio", "áudio":
		return ContentAudio
	case "video", "vídeo":
		return ContentVideo
	default:
		return ContentUnknown
	}
}

// Valid reports whether ct is one of the known analyzable types.
func (ct ContentType) Valid() bool {
	switch ct {
	case ContentText, ContentDocument, ContentImage, ContentAudio, ContentVideo:
		return true
	}
	return false
}

// MIMEType guesses the MIME type of a media file from its extension.
func MIMEType(name string) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".") {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "webp":
		return "image/webp"
	case "mp3":
		return "audio/mp3"
	case "wav":
		return "audio/wav"
	case "ogg":
		return "audio/ogg"
	case "flac":
		return "audio/flac"
	case "m4a":
		return "audio/aac"
	case "pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
