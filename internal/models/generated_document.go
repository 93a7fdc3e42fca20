package models

import "time"

// DefaultVersion is assigned when a generation request does not carry one.
const DefaultVersion = 1

// GeneratedDocument is the persisted output of one successful pipeline run.
type GeneratedDocument struct {
	ID               string    `bson:"_id" json:"id"`
	UserID           string    `bson:"userId" json:"userId"`
	Name             string    `bson:"name" json:"name"`
	Version          int       `bson:"version" json:"version"`
	TexBlobID        string    `bson:"texBlobId" json:"texBlobId"`
	ClsBlobID        string    `bson:"clsBlobId,omitempty" json:"clsBlobId,omitempty"`
	ClsFileName      string    `bson:"clsFileName,omitempty" json:"clsFileName,omitempty"`
	PdfBlobID        string    `bson:"pdfBlobId" json:"pdfBlobId"`
	TemplateID       string    `bson:"templateId,omitempty" json:"templateId,omitempty"`
	SourceDocumentID string    `bson:"sourceDocumentId" json:"sourceDocumentId"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// BlobIDs lists the blob references in deletion order, skipping absent ones.
func (g *GeneratedDocument) BlobIDs() []string {
	out := make([]string, 0, 3)
	for _, id := range []string{g.TexBlobID, g.ClsBlobID, g.PdfBlobID} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
