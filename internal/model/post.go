package model

import "time"

// Post 帖子。AuthorID 创建后不可变；GroupID 为非拥有引用，分组删除后可悬空。
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID  int64     `gorm:"not null;index:idx_post_author_created,priority:1" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	GroupID   *int64    `gorm:"index:idx_post_group_created,priority:1" json:"group_id,omitempty"`
	Image     *string   `gorm:"type:varchar(255)" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"not null;index;index:idx_post_author_created,priority:2;index:idx_post_group_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// String returns the first 15 characters of the text.
func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > 15 {
		r = r[:15]
	}
	return string(r)
}
