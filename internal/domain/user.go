package domain

import "time"

// User is the account whose password the reset flow rotates. Account
// management itself lives outside this service.
type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id" gorm:"column:id;primaryKey;size:26"`
	Email        string    `json:"email" dynamodbav:"email" gorm:"uniqueIndex;not null"`
	Phone        *string   `json:"phone" dynamodbav:"phone"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash" gorm:"not null"`
	RoleID       string    `json:"role_id" dynamodbav:"role_id" gorm:"size:26"`
	Enable       bool      `json:"enable" dynamodbav:"enable" gorm:"not null"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

func (User) TableName() string { return "users" }
