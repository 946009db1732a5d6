package asset

import "time"

const (
	TypeCase             = "CASE"
	TypeChangeManagement = "CHANGE_MANAGEMENT"
	TypeOrangeCase       = "ORANGE_CASE"
	TypeClientRequests   = "CLIENT_REQUESTS"

	StatusActive    = "Active"
	StatusCompleted = "Completed"
	StatusOnHold    = "On Hold"
)

var validTypes = map[string]bool{
	TypeCase:             true,
	TypeChangeManagement: true,
	TypeOrangeCase:       true,
	TypeClientRequests:   true,
}

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusCompleted: true,
	StatusOnHold:    true,
}

// Asset is a tracked case, change request or client request.
type Asset struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	AssetType   string    `db:"asset_type" json:"asset_type"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type AssetInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssetType   string `json:"asset_type"`
	Status      string `json:"status"`
}

// AssetPatch carries the fields of a partial update.
type AssetPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssetType   *string `json:"asset_type"`
	Status      *string `json:"status"`
}

// Filter narrows List. Empty fields match everything; Search is a
// case-insensitive substring of the title.
type Filter struct {
	AssetType string
	Status    string
	Search    string
}
