package user

import (
	"time"

	roleDatamodel "github.com/frahmantamala/auth-service/internal/core/datamodel/role"
)

type User struct {
	ID           int64                `gorm:"primaryKey"`
	Username     string               `gorm:"column:username;uniqueIndex;not null"`
	Email        string               `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string               `gorm:"column:password_hash;not null"`
	IsActive     bool                 `gorm:"column:is_active;default:true"`
	EmployeeID   *int64               `gorm:"column:employee_id"`
	Roles        []roleDatamodel.Role `gorm:"many2many:user_roles"`
	CreatedAt    time.Time            `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string { return "users" }
