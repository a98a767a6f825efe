package model

import "time"

// Follow 关注关系（UserID 关注 AuthorID）
type Follow struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	UserID   int64 `gorm:"not null;index:idx_follow_user;uniqueIndex:idx_follow_pair"`
	AuthorID int64 `gorm:"not null;index:idx_follow_author;uniqueIndex:idx_follow_pair"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (user_id, author_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
