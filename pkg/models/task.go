package model

import (
	"fmt"
	"time"

	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
)

const (
	MinProgress = 0
	MaxProgress = 100
)

type Task struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	Title            string               `gorm:"not null" json:"title"`
	Description      string               `gorm:"type:text" json:"description"`
	Status           constants.TaskStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Progress         int                  `gorm:"not null;default:0" json:"progress"`
	Deadline         time.Time            `json:"deadline"`
	CreatedByID      uint                 `gorm:"not null;index" json:"created_by_id"`
	CreatedBy        User                 `gorm:"foreignKey:CreatedByID" json:"created_by"`
	AssignedLeaderID uint                 `gorm:"not null;index" json:"assigned_leader_id"`
	AssignedLeader   User                 `gorm:"foreignKey:AssignedLeaderID" json:"assigned_leader"`
	ProgressByID     *uint                `json:"progress_by_id,omitempty"`
	ProgressBy       *User                `gorm:"foreignKey:ProgressByID" json:"progress_by,omitempty"`
	Version          uint                 `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Histories        []HistoryEntry       `gorm:"foreignKey:TaskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"histories"`
}

// IsValid checks the invariants every task must hold: progress within
// bounds, a known status, and a status that matches what the ledger says.
func (t *Task) IsValid() error {
	if t.Progress < MinProgress || t.Progress > MaxProgress {
		return apperrors.Validation(fmt.Sprintf("progress %d is outside [0,100]", t.Progress))
	}
	if !t.Status.IsValid() {
		return apperrors.Validation(fmt.Sprintf("unknown status %q", t.Status))
	}
	if derived := CurrentStatus(t.Histories); derived != t.Status {
		return apperrors.Validation(fmt.Sprintf("status %q does not match history (%q)", t.Status, derived))
	}
	return nil
}

func (t *Task) PercentComplete() int {
	switch {
	case t.Progress < MinProgress:
		return MinProgress
	case t.Progress > MaxProgress:
		return MaxProgress
	default:
		return t.Progress
	}
}

func (t *Task) IsOverdue(now time.Time) bool {
	if t.Deadline.IsZero() || t.Status == constants.StatusCompleted {
		return false
	}
	return t.Deadline.Before(now)
}

// IsUpcoming reports whether the deadline falls on or before now+horizonDays.
// Already overdue tasks count as upcoming.
func (t *Task) IsUpcoming(now time.Time, horizonDays int) bool {
	if t.Deadline.IsZero() || t.Status == constants.StatusCompleted {
		return false
	}
	return !t.Deadline.After(now.AddDate(0, 0, horizonDays))
}

func (t *Task) IsCreatedBy(userID uint) bool {
	return t.CreatedByID != 0 && t.CreatedByID == userID
}

// Clone returns a copy whose history slice can be appended to without
// touching the original.
func (t *Task) Clone() *Task {
	c := *t
	if t.Histories != nil {
		c.Histories = make([]HistoryEntry, len(t.Histories))
		copy(c.Histories, t.Histories)
	}
	if t.ProgressByID != nil {
		id := *t.ProgressByID
		c.ProgressByID = &id
	}
	if t.ProgressBy != nil {
		u := *t.ProgressBy
		c.ProgressBy = &u
	}
	return &c
}
