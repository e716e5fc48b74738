package filesystem

import "strings"

// DefaultMimeType is served for unknown extensions
const DefaultMimeType = "application/octet-stream"

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".txt":  "text/plain",
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".json": "application/json",
	".pdf":  "application/pdf",
	".mp4":  "video/mp4",
}

// MimeTypeFor returns the content type served for a file name
func MimeTypeFor(name string) string {
	if t, ok := mimeTypes[strings.ToLower(extension(name))]; ok {
		return t
	}
	return DefaultMimeType
}
