package model

import (
	"time"

	"task-tracker.com/task-tracker/pkg/constants"
)

// HistoryEntry is one immutable audit record in a task's ledger. Status is
// the status the task held once the entry had been applied.
type HistoryEntry struct {
	ID         uint                    `gorm:"primaryKey" json:"id"`
	TaskID     uint                    `gorm:"not null;index" json:"task_id"`
	Action     constants.HistoryAction `gorm:"type:varchar(20);not null" json:"action"`
	Status     constants.TaskStatus    `gorm:"type:varchar(20)" json:"status,omitempty"`
	ActionByID uint                    `gorm:"not null" json:"action_by_id"`
	ActionBy   User                    `gorm:"foreignKey:ActionByID" json:"action_by"`
	Note       string                  `gorm:"type:text" json:"note"`
	CreatedAt  time.Time               `json:"created_at"`
}

func (HistoryEntry) TableName() string {
	return "task_histories"
}
