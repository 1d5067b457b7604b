package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a published entry in the Quill application.
//
// LikesCount and CommentsCount are denormalized columns recomputed from the
// live child rows after every like/comment mutation, so they always equal the
// actual related-row counts.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	ImageURL string `json:"image_url,omitempty"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID  *uint  `gorm:"index" json:"group_id,omitempty"`
	Group    *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`

	LikesCount    int `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int `gorm:"not null;default:0" json:"comments_count"`

	// Liked indicates whether the current requesting user liked this post (computed)
	Liked bool `gorm:"-" json:"liked"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Likes    []Like    `gorm:"foreignKey:PostID" json:"-"`
}
