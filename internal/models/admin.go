// internal/models/admin.go
package models

import (
	"time"
)

type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RequestID    string    `json:"request_id" gorm:"size:36;index"`
	UsuarioID    *uint     `json:"usuario_id" gorm:"index"`
	Action       string    `json:"action" gorm:"size:150;not null;index"`
	ResourceType string    `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *uint     `json:"resource_id" gorm:"index"`
	StatusCode   int       `json:"status_code"`
	NewValues    JSONB     `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string    `json:"ip_address" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" gorm:"type:text"`
	CriadoEm     time.Time `json:"criado_em" gorm:"column:criado_em;autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
