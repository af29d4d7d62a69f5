package models

import (
	"encoding/json"
	"time"
)

// Task represents a single card on a project board.
//
// AssigneeID and ProjectID are the canonical links. Assignee and Project are
// optional denormalized copies that only some endpoints populate; never assume
// both halves of a pair are present.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title" binding:"required"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status" binding:"enum"`
	Priority    TaskPriority `json:"priority" binding:"enum"`
	AssigneeID  *string      `json:"assigneeId,omitempty"`
	Assignee    *User        `json:"assignee,omitempty"`
	ProjectID   *string      `json:"projectId,omitempty"`
	Project     *Project     `json:"project,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	Tags        []string     `json:"tags"`
	Attachments []Attachment `json:"attachments" binding:"dive"`
	Comments    []Comment    `json:"comments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	CreatedBy   string       `json:"createdBy" binding:"required"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	type wire Task
	w := wire(t)
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if w.Attachments == nil {
		w.Attachments = []Attachment{}
	}
	if w.Comments == nil {
		w.Comments = []Comment{}
	}
	return json.Marshal(w)
}

// ResolvedAssigneeID returns the assignee id, falling back to the embedded user.
func (t Task) ResolvedAssigneeID() (string, bool) {
	if t.AssigneeID != nil {
		return *t.AssigneeID, true
	}
	if t.Assignee != nil {
		return t.Assignee.ID, true
	}
	return "", false
}

// ResolvedProjectID returns the project id, falling back to the embedded project.
func (t Task) ResolvedProjectID() (string, bool) {
	if t.ProjectID != nil {
		return *t.ProjectID, true
	}
	if t.Project != nil {
		return t.Project.ID, true
	}
	return "", false
}

// Overdue reports whether the task has a due date before now and is still open.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	if t.Status == TaskStatusDone || t.Status == TaskStatusArchived {
		return false
	}
	return t.DueDate.Before(now)
}

// Attachment is a file uploaded against a task.
type Attachment struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename" binding:"required"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size" binding:"gte=0"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
	UploadedBy   string    `json:"uploadedBy" binding:"required"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content" binding:"required"`
	AuthorID  string    `json:"authorId" binding:"required"`
	Author    User      `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
