package models

import "io"

// Record is one entry of the URL board.
type Record struct {
	URL   string `json:"url"`
	Image string `json:"image,omitempty"`
	Title string `json:"title,omitempty"`
}

// Attachment is a locally selected image waiting to be encoded.
type Attachment struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Submission is a pending add travelling through the submission pipeline.
type Submission struct {
	Candidate string
	Image     *Attachment
	Record    Record
}
