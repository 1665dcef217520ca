package models

import (
	"time"
)

// GORM-compatible models with proper tags

// ProjectRecordGorm is the storage row for a project: the whole aggregate
// lives in one jsonb document column and is replaced on every write. Name and
// status are lifted out of the document for cheap listing queries only; the
// document is the source of truth.
type ProjectRecordGorm struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Status    string    `gorm:"column:status" json:"status"`
	Document  Project   `gorm:"column:document;type:jsonb" json:"document"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for ProjectRecordGorm
func (ProjectRecordGorm) TableName() string {
	return "projects"
}

// ActivityLogGorm records who changed what on a project document
type ActivityLogGorm struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	ProjectID   string    `gorm:"column:project_id;index;not null" json:"project_id"`
	Action      string    `gorm:"column:action;not null" json:"action"`
	Entity      string    `gorm:"column:entity" json:"entity"`
	EntityID    string    `gorm:"column:entity_id" json:"entity_id"`
	PerformedBy string    `gorm:"column:performed_by" json:"performed_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for ActivityLogGorm
func (ActivityLogGorm) TableName() string {
	return "activity_logs"
}
