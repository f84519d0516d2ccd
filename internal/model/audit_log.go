package model

import (
	"time"

	"github.com/VannaSem/SevaSign/internal/constant"
)

// AuditLog rows are append-only. They are created alongside each successful
// state change of an endorsement request and never updated or deleted.
type AuditLog struct {
	BaseModel
	RequestID   string               `gorm:"type:text;not null;index" json:"requestId"`
	Action      constant.AuditAction `gorm:"type:varchar(20);not null" json:"action"`
	PerformedBy string               `gorm:"type:text;not null" json:"performedBy"`
	PerformedAt time.Time            `gorm:"type:timestamptz;not null" json:"performedAt"`
	IPAddress   string               `gorm:"type:text" json:"ipAddress,omitempty"`

	Request EndorsementRequest `gorm:"foreignKey:RequestID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

func (al AuditLog) TableName() string {
	return "audit_logs"
}
