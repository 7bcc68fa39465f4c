package board

import "encoding/json"

// TimestampLayout is ISO-8601 with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type FeaturedContent struct {
	LinkText string `json:"linkText"`
	LinkURL  string `json:"linkUrl"`
}

type Snapshot struct {
	CurrentNumber    int
	PassedNumbers    []int
	FeaturedContents []FeaturedContent
	LastUpdated      string
	SoundEnabled     bool
	IsPublic         bool
}

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
}

// Layout is an opaque dashboard arrangement owned by the admin front-end.
type Layout = json.RawMessage
