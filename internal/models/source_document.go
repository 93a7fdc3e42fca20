package models

import "time"

const (
	// MimePDF is the only MIME type accepted as a generation source.
	MimePDF = "application/pdf"
	// DefaultMaxUploadBytes is the upload ceiling for a single source document.
	DefaultMaxUploadBytes int64 = 10 * 1024 * 1024
	// SystemOwner is the owner id of files managed by the service itself (template assets).
	SystemOwner = ""
)

// SourceDocument is an uploaded file owned by one user. Template assets are
// stored the same way under SystemOwner.
type SourceDocument struct {
	ID           string    `bson:"_id" json:"id"`
	OriginalName string    `bson:"originalName" json:"originalName"`
	BlobID       string    `bson:"blobId" json:"-"`
	MimeType     string    `bson:"mimetype" json:"mimetype"`
	Size         int64     `bson:"size" json:"size"`
	Tags         []string  `bson:"tags" json:"tags"`
	UserID       string    `bson:"userId" json:"userId,omitempty"`
	SystemGen    *bool     `bson:"systemGen,omitempty" json:"systemGen,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsPDF reports whether the document may be used as a generation source.
func (d *SourceDocument) IsPDF() bool { return d.MimeType == MimePDF }

// IsSystemGenerated is true only when the classification flag is explicitly set.
// An unset flag counts as false.
func (d *SourceDocument) IsSystemGenerated() bool {
	return d.SystemGen != nil && *d.SystemGen
}
