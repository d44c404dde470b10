package model

import (
	"time"
)

const MaxReplyDepth = 5

type ForumContentType string

const (
	ForumThreadContent ForumContentType = "thread"
	ForumReplyContent  ForumContentType = "reply"
)

// swagger:model ForumThread
type ForumThread struct {
	UUIDBase
	ModuleID       *uint        `gorm:"index;type:bigint unsigned" json:"moduleId"`
	AuthorID       uint         `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author         User         `gorm:"foreignKey:AuthorID" json:"author"`
	Title          string       `gorm:"size:255;not null" json:"title"`
	Content        string       `gorm:"type:text;not null" json:"content"`
	ReplyCount     int          `gorm:"default:0" json:"replyCount"`
	Likes          int          `gorm:"default:0" json:"likes"`
	LastActivityAt time.Time    `gorm:"index" json:"lastActivityAt"`
	Replies        []ForumReply `gorm:"foreignKey:ThreadID" json:"replies,omitempty"`
}

func (ForumThread) TableName() string {
	return "forum_threads"
}

// swagger:model ForumReply
type ForumReply struct {
	UUIDBase
	ThreadID string  `gorm:"index;type:varchar(36)" json:"threadId"`
	ParentID *string `gorm:"index;type:varchar(36)" json:"parentId"`
	AuthorID uint    `gorm:"index;type:bigint unsigned" json:"authorId"`
	Author   User    `gorm:"foreignKey:AuthorID" json:"author"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	Likes    int     `gorm:"default:0" json:"likes"`
	Depth    int     `gorm:"default:0" json:"depth"`
}

func (ForumReply) TableName() string {
	return "forum_replies"
}

type ForumLike struct {
	ID          uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt   time.Time        `json:"createdAt"`
	UserID      uint             `gorm:"uniqueIndex:idx_forum_like;type:bigint unsigned" json:"userId"`
	ContentType ForumContentType `gorm:"uniqueIndex:idx_forum_like;size:20" json:"contentType"`
	ContentID   string           `gorm:"uniqueIndex:idx_forum_like;size:36" json:"contentId"`
}

func (ForumLike) TableName() string {
	return "forum_likes"
}
