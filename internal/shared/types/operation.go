package types

import "time"

// OperationKind names the unit of work being tracked
type OperationKind string

const (
	OpList         OperationKind = "list"
	OpRead         OperationKind = "read"
	OpWrite        OperationKind = "write"
	OpCreateFolder OperationKind = "create_folder"
	OpRename       OperationKind = "rename"
	OpMove         OperationKind = "move"
	OpCopy         OperationKind = "copy"
	OpDelete       OperationKind = "delete"
	OpArchive      OperationKind = "archive"
	OpExtract      OperationKind = "extract"
	OpUpload       OperationKind = "upload"
	OpSearch       OperationKind = "search"
)

// OperationStatus is an operation's lifecycle state
type OperationStatus string

const (
	StatusPending    OperationStatus = "pending"
	StatusProcessing OperationStatus = "processing"
	StatusDone       OperationStatus = "done"
	StatusError      OperationStatus = "error"
)

// Terminal reports whether no further transitions are possible
func (s OperationStatus) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Operation is a client-visible progress record
type Operation struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Kind      OperationKind   `json:"type"`
	Path      string          `json:"path,omitempty"`
	Progress  int             `json:"progress"`
	Status    OperationStatus `json:"status"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ItemFailure is one failed item of a bulk operation
type ItemFailure struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// BulkResult reports per-item outcomes of a bulk operation
type BulkResult struct {
	Succeeded int           `json:"succeeded"`
	Failures  []ItemFailure `json:"failures"`
}
