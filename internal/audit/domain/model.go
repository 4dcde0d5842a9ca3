package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	ActorTypeSystem = "system"
	ActorTypeAdmin  = "admin"
	ActorTypeMentor = "mentor"
)

type AuditLog struct {
	ID snowflake.ID `gorm:"primaryKey"`

	ActorType string  `gorm:"type:text;not null"`
	ActorID   *string `gorm:"type:text"`

	Action     string  `gorm:"type:text;not null;index"`
	TargetType string  `gorm:"type:text;not null"`
	TargetID   *string `gorm:"type:text;index"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;index"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// Entry is the write-side view of an audit record.
type Entry struct {
	ActorType  string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}
