package auditlog

import "time"

type AuditLog struct {
	ID           int64     `gorm:"primaryKey"`
	EventName    string    `gorm:"column:event_name;not null"`
	EventDetails string    `gorm:"column:event_details"`
	Username     string    `gorm:"column:username;not null"`
	UserRole     string    `gorm:"column:user_role"`
	EmployeeID   *int64    `gorm:"column:employee_id"`
	Timestamp    time.Time `gorm:"column:timestamp;default:now()"`
}

func (AuditLog) TableName() string { return "audit_logs" }
