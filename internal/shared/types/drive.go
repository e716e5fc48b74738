package types

// DriveInfo describes a mounted volume available as a browsable root
type DriveInfo struct {
	Name           string `json:"name"`
	MountPath      string `json:"path"`
	SizeLabel      string `json:"size"`
	FilesystemType string `json:"type"`
	IsRemovable    bool   `json:"isRemovable"`
}
