package domain

import "time"

// Banner is a homepage carousel entry managed from the admin console.
type Banner struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Image     string    `gorm:"size:1024" json:"image"`
	Link      string    `gorm:"size:1024" json:"link"`
	Active    bool      `gorm:"index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Banner) TableName() string {
	return "store_banner"
}
