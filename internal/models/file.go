package models

import "gorm.io/gorm"

// ProjectFile is attachment metadata; the payload itself lives in the
// configured storage provider under ObjectKey.
type ProjectFile struct {
	gorm.Model
	ProjectID    uint    `gorm:"index;not null" json:"projectId"`
	Project      Project `json:"-"`
	UploadedByID uint    `json:"uploadedById"`

	FileName     string `gorm:"size:255;not null" json:"fileName"`
	ObjectKey    string `gorm:"size:255;uniqueIndex;not null" json:"-"`
	ThumbnailKey string `gorm:"size:255" json:"-"`
	MimeType     string `gorm:"size:100" json:"mimeType"`
	SizeBytes    int64  `json:"sizeBytes"`
}
