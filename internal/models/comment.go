package models

import "time"

// MaxCommentLength is the maximum number of characters in a comment
const MaxCommentLength = 500

// LessonComment represents a comment on a lesson. ParentID points to
// the comment being replied to, empty for top-level comments.
type LessonComment struct {
	ID         string    `json:"id"`
	LessonID   string    `json:"lessonId"`
	UserID     string    `json:"userId"`
	ParentID   string    `json:"parentId,omitempty"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CommentResponse represents a top-level comment with its replies
type CommentResponse struct {
	LessonComment
	Replies []LessonComment `json:"replies"`
}

// CreateCommentRequest represents a request to comment on a lesson
type CreateCommentRequest struct {
	LessonID string `json:"lessonId"`
	ParentID string `json:"parentId,omitempty"`
	Content  string `json:"content"`
}
