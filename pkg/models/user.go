package model

import "task-tracker.com/task-tracker/pkg/constants"

type User struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	Username string         `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password string         `gorm:"not null" json:"-"`
	Role     constants.Role `gorm:"type:varchar(20);not null;default:pelaksana" json:"role"`
}

// Ref strips everything but the identity fields, which is all a task or
// history entry carries for the users it points at.
func (u User) Ref() User {
	return User{ID: u.ID, Username: u.Username, Role: u.Role}
}
