package model

import "github.com/VannaSem/SevaSign/internal/constant"

type User struct {
	BaseModel
	Email      string            `gorm:"unique;not null;type:citext" json:"email" form:"email" binding:"required"`
	FirstName  string            `gorm:"type:varchar(30);not null;" json:"firstName" form:"firstName" binding:"required"`
	LastName   string            `gorm:"type:varchar(30);not null;" json:"lastName" form:"lastName" binding:"required"`
	Role       constant.UserRole `gorm:"type:varchar(30);not null;default:'customer'" json:"role" form:"role"`
	ProfileURL string            `gorm:"type:text;default:null" json:"profileURL" form:"profileURL"`
}

func (u User) TableName() string {
	return "users"
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
