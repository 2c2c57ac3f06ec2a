package model

// BlobDescriptor describes a binary payload transferred through a pre-signed location.
type BlobDescriptor struct {
	ID            string
	UploadURL     string
	DownloadURL   string
	ContentMD5    string
	ContentSHA256 string
	Length        int64
}
