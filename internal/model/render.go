package model

import "time"

// RenderSource tells where a render was requested
type RenderSource string

const (
	RenderSourceAPI RenderSource = "api"
	RenderSourceCLI RenderSource = "cli"
)

// RenderRecord is an archived rendered document
type RenderRecord struct {
	ID        string    `gorm:"primarykey;size:20" json:"id"` // xid
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	FlavorID string       `gorm:"size:100;not null;index" json:"flavor_id"`
	Title    string       `gorm:"size:255" json:"title"`
	Source   RenderSource `gorm:"size:20;not null;default:api" json:"source"`

	// Numbers is the section number map of the render
	Numbers      StringMap   `gorm:"type:text" json:"numbers"`
	SectionKeys  StringArray `gorm:"type:text" json:"section_keys"`
	SectionCount int         `gorm:"not null;default:0" json:"section_count"`

	// Sections holds the rendered sections as JSON
	Sections string `gorm:"type:text" json:"-"`
	Markdown string `gorm:"type:text" json:"markdown,omitempty"`

	// Payload is the raw JSON payload as received
	Payload      string `gorm:"type:text" json:"payload,omitempty"`
	PayloadBytes int    `gorm:"not null;default:0" json:"payload_bytes"`

	GeneratedAt time.Time `json:"generated_at"`
}

// TableName specifies the table name for RenderRecord
func (RenderRecord) TableName() string {
	return "renders"
}
