package model

import "time"

// User 用户账号模型（PostgreSQL）
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;comment:用户标识" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex;comment:登录邮箱（小写）" json:"email"`
	PasswordHash string    `gorm:"size:255;not null;comment:bcrypt 密码哈希" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false;comment:是否管理员" json:"is_admin"`
	CreatedAt    time.Time `gorm:"autoCreateTime;comment:注册时间" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;comment:更新时间" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
