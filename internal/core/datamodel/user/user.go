package user

import "time"

// Role is the denormalized role copy kept on each user row.
type Role struct {
	ID          string       `json:"id"`
	Key         string       `json:"key,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
	Color       string       `json:"color,omitempty"`
}

type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

type User struct {
	// Seq preserves insertion order; ids are opaque strings.
	Seq          int64      `gorm:"column:seq;primaryKey;autoIncrement"`
	ID           string     `gorm:"column:id;uniqueIndex;size:64;not null"`
	Username     string     `gorm:"column:username;index;not null"`
	Email        string     `gorm:"column:email;not null"`
	FirstName    string     `gorm:"column:first_name;not null"`
	LastName     string     `gorm:"column:last_name;not null"`
	Status       string     `gorm:"column:status;index;not null"`
	Department   string     `gorm:"column:department"`
	Roles        []Role     `gorm:"column:roles;serializer:json"`
	PasswordHash string     `gorm:"column:password_hash"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime:false;not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime:false;not null"`
}

func (User) TableName() string {
	return "users"
}
