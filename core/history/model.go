package history

import (
	"time"

	"github.com/google/uuid"
)

// Change is one applied schema statement.
type Change struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Entity    string    `gorm:"size:255;index" json:"entity"`
	Kind      string    `gorm:"size:16" json:"kind"`
	Policy    string    `gorm:"size:32" json:"policy"`
	Statement string    `gorm:"type:text" json:"statement"`
	AppliedAt time.Time `json:"applied_at"`
}

// TableName overrides the gorm default.
func (Change) TableName() string { return "schema_changes" }
