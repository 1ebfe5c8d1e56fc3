package models

import "time"

// DirectoryEntry is one file or sub-directory returned by a remote listing.
// Name is the full path under the container root, without a trailing separator.
type DirectoryEntry struct {
	Name          string    `json:"name"`
	LastModified  time.Time `json:"last_modified"`
	ContentLength int64     `json:"content_length"`
	IsDirectory   bool      `json:"is_directory"`
}

type ListItem struct {
	DisplayName  string `json:"display_name"`
	Path         string `json:"path"`
	LastModified string `json:"last_modified,omitempty"`
	Size         int64  `json:"size"`
	IsDirectory  bool   `json:"is_directory,omitempty"`
}

type ListSummary struct {
	Container      string `json:"container"`
	Directory      string `json:"directory"`
	Filter         string `json:"filter"`
	Scanned        int    `json:"scanned"`
	Matched        int    `json:"matched"`
	TotalSizeBytes int64  `json:"total_size_bytes"`
	TotalSizeHuman string `json:"total_size_human"`
	OperationTime  string `json:"operation_time"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}
