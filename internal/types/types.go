// Package types provides shared type definitions for the application.
package types

// PlatformIcon is the answer to an icon lookup. PNG is empty when the
// frontend already holds the bitmap for Key.
type PlatformIcon struct {
	Key string `json:"key"`
	PNG []byte `json:"png,omitempty"`
}

// TransformRequest asks for an in-place image transformation.
type TransformRequest struct {
	Filepath        string  `json:"filepath"`
	Transformation  int     `json:"transformation"` // 0 rotate90cw .. 4 flipvertical
	JPEGCompression float64 `json:"jpegCompression"`
}

// OpenFilesRequest asks to open files with a specific application.
type OpenFilesRequest struct {
	Files      []string `json:"files"`
	Identifier string   `json:"identifier"`
}

// FileOpened is pushed to a subscriber for every file the OS opens with us.
type FileOpened struct {
	Subscription string `json:"subscription"`
	Path         string `json:"path"`
}
