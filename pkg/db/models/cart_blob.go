package models

import "time"

// CartBlob holds the serialized cart of one browsing session.
type CartBlob struct {
	Key       string    `gorm:"column:cart_key;primaryKey;size:255"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CartBlob) TableName() string {
	return "cart_blobs"
}
