package models

import "time"

// Asset selects one of the files a template references.
type Asset string

const (
	AssetThumbnail Asset = "thumbnail"
	AssetPreview   Asset = "preview"
	AssetMainTex   Asset = "main_tex"
	AssetMainCls   Asset = "main_cls"
)

// Template is a system-managed LaTeX resume layout. Its file ids point at
// SystemOwner SourceDocument records, which in turn point at blobs.
type Template struct {
	ID               string    `bson:"_id" json:"id"`
	Name             string    `bson:"name" json:"name"`
	Author           string    `bson:"author" json:"author"`
	Description      string    `bson:"description" json:"description"`
	ShortDescription string    `bson:"shortDescription" json:"shortDescription"`
	Tags             []string  `bson:"tags" json:"tags"`
	Version          string    `bson:"version" json:"version"`
	Active           bool      `bson:"active" json:"active"`
	ThumbnailFileID  string    `bson:"thumbnailFileId" json:"thumbnailFileId"`
	PreviewFileID    string    `bson:"previewFileId" json:"previewFileId"`
	MainTexFileID    string    `bson:"mainTexFileId" json:"mainTexFileId"`
	MainClsFileID    string    `bson:"mainClsFileId,omitempty" json:"mainClsFileId,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// FileID returns the file reference for asset, or "" when the template has none.
func (t *Template) FileID(a Asset) string {
	switch a {
	case AssetThumbnail:
		return t.ThumbnailFileID
	case AssetPreview:
		return t.PreviewFileID
	case AssetMainTex:
		return t.MainTexFileID
	case AssetMainCls:
		return t.MainClsFileID
	}
	return ""
}
