package models

import "time"

type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleCurator Role = "curator"
	RoleAdmin   Role = "admin"
)

// User carries only what ownership and role checks need. Account
// management lives in the identity service, not here.
type User struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"unique;not null" json:"email"`
	Name      string `json:"name"`
	Role      Role   `gorm:"type:VARCHAR(20);default:'buyer'" json:"role"`
	CreatedAt time.Time
}
