package types

import "time"

// ResolvedLocation is a logical path mapped onto the host filesystem.
// Never persisted.
type ResolvedLocation struct {
	LogicalPath  string `json:"logical_path"`
	PhysicalPath string `json:"physical_path"`
	IsExternal   bool   `json:"is_external"`
}

// FileEntry is the read projection of a file or directory
type FileEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	IsDir      bool      `json:"isDir"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modDate"`
	Extension  string    `json:"ext"`
}

// EntryDetails extends FileEntry for the details panel
type EntryDetails struct {
	FileEntry
	MimeType  string `json:"mimeType,omitempty"`
	Charset   string `json:"charset,omitempty"`
	TotalSize int64  `json:"totalSize"`
	ItemCount int64  `json:"itemCount"`
}

// Disposition controls how streamed content is presented
type Disposition string

const (
	DispositionInline     Disposition = "inline"
	DispositionAttachment Disposition = "attachment"
)
