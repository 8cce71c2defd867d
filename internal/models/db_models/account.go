package db_models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	Role         Role `gorm:"type:varchar(16);default:'user'"`
	Avatar       string
	IsActive     bool `gorm:"not null"`
	LastLoginAt  *int64
}
