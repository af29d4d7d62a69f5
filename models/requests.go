package models

import (
	"slices"
	"time"
)

// CreateProjectRequest is the input contract for creating a project.
type CreateProjectRequest struct {
	Name        string                `json:"name" binding:"required"`
	Description *string               `json:"description,omitempty"`
	Status      *ProjectStatus        `json:"status,omitempty" binding:"omitempty,enum"`
	Tags        *[]string             `json:"tags,omitempty"`
	Settings    *ProjectSettingsPatch `json:"settings,omitempty"`
}

func (r CreateProjectRequest) Validate() error { return Validate(r) }

// Project builds the entity the request describes. Server-assigned fields are
// passed in; fields the request leaves out take their defaults. The error
// wraps ErrInvalid when the requested settings break their invariants.
func (r CreateProjectRequest) Project(id string, owner User, now time.Time) (Project, error) {
	p := Project{
		ID:          id,
		Name:        r.Name,
		Description: cloneString(r.Description),
		Status:      DefaultProjectStatus,
		OwnerID:     owner.ID,
		Owner:       owner,
		Members: []ProjectMember{{
			UserID:   owner.ID,
			User:     owner,
			Role:     ProjectRoleOwner,
			JoinedAt: now,
		}},
		Tasks:     []Task{},
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.Tags != nil {
		p.Tags = slices.Clone(*r.Tags)
	}
	if r.Settings != nil {
		if err := r.Settings.ApplyTo(&p.Settings); err != nil {
			return Project{}, err
		}
	}
	return p, nil
}

// UpdateProjectRequest is a sparse patch: nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string               `json:"name,omitempty" binding:"omitempty,min=1"`
	Description *string               `json:"description,omitempty"`
	Status      *ProjectStatus        `json:"status,omitempty" binding:"omitempty,enum"`
	Tags        *[]string             `json:"tags,omitempty"`
	Settings    *ProjectSettingsPatch `json:"settings,omitempty"`
}

func (r UpdateProjectRequest) Validate() error { return Validate(r) }

// IsEmpty reports whether the patch sets no field at all.
func (r UpdateProjectRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Status == nil && r.Tags == nil &&
		(r.Settings == nil || r.Settings.IsEmpty())
}

// ApplyTo writes the fields present in the patch onto p and bumps UpdatedAt.
// When the merged settings are invalid p is left untouched and the error
// wraps ErrInvalid.
func (r UpdateProjectRequest) ApplyTo(p *Project, now time.Time) error {
	settings := p.Settings
	if r.Settings != nil {
		if err := r.Settings.ApplyTo(&settings); err != nil {
			return err
		}
	}
	p.Settings = settings
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = cloneString(r.Description)
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
	if r.Tags != nil {
		p.Tags = slices.Clone(*r.Tags)
	}
	if !r.IsEmpty() {
		p.UpdatedAt = now
	}
	return nil
}

// ProjectSettingsPatch is a partial ProjectSettings.
type ProjectSettingsPatch struct {
	AllowPublicAccess  *bool     `json:"allowPublicAccess,omitempty"`
	EnableTimeTracking *bool     `json:"enableTimeTracking,omitempty"`
	EnableFileUploads  *bool     `json:"enableFileUploads,omitempty"`
	MaxFileSize        *int64    `json:"maxFileSize,omitempty"`
	AllowedFileTypes   *[]string `json:"allowedFileTypes,omitempty"`
}

func (s ProjectSettingsPatch) IsEmpty() bool {
	return s.AllowPublicAccess == nil && s.EnableTimeTracking == nil && s.EnableFileUploads == nil &&
		s.MaxFileSize == nil && s.AllowedFileTypes == nil
}

// ApplyTo merges the patch into dst. The merged settings are validated as a
// whole, since a patch that is fine on its own can still break them (turning
// uploads on over a negative size); dst is only written when they hold.
func (s ProjectSettingsPatch) ApplyTo(dst *ProjectSettings) error {
	merged := *dst
	if s.AllowPublicAccess != nil {
		merged.AllowPublicAccess = *s.AllowPublicAccess
	}
	if s.EnableTimeTracking != nil {
		merged.EnableTimeTracking = *s.EnableTimeTracking
	}
	if s.EnableFileUploads != nil {
		merged.EnableFileUploads = *s.EnableFileUploads
	}
	if s.MaxFileSize != nil {
		merged.MaxFileSize = *s.MaxFileSize
	}
	if s.AllowedFileTypes != nil {
		merged.AllowedFileTypes = slices.Clone(*s.AllowedFileTypes)
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	*dst = merged
	return nil
}

// AddMemberRequest grants a user a role on a project.
type AddMemberRequest struct {
	UserID string      `json:"userId" binding:"required"`
	Role   ProjectRole `json:"role" binding:"enum"`
}

func (r AddMemberRequest) Validate() error { return Validate(r) }

// Member builds the membership record; user must be the user named by UserID.
func (r AddMemberRequest) Member(user User, now time.Time) ProjectMember {
	return ProjectMember{
		UserID:   r.UserID,
		User:     user,
		Role:     r.Role,
		JoinedAt: now,
	}
}

// CreateTaskRequest is the input contract for creating a task.
type CreateTaskRequest struct {
	Title       string        `json:"title" binding:"required"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty" binding:"omitempty,enum"`
	Priority    *TaskPriority `json:"priority,omitempty" binding:"omitempty,enum"`
	AssigneeID  *string       `json:"assigneeId,omitempty"`
	ProjectID   *string       `json:"projectId,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
}

func (r CreateTaskRequest) Validate() error { return Validate(r) }

// Task builds the entity the request describes.
func (r CreateTaskRequest) Task(id, createdBy string, now time.Time) Task {
	t := Task{
		ID:          id,
		Title:       r.Title,
		Description: cloneString(r.Description),
		Status:      DefaultTaskStatus,
		Priority:    DefaultTaskPriority,
		AssigneeID:  cloneString(r.AssigneeID),
		ProjectID:   cloneString(r.ProjectID),
		DueDate:     cloneTime(r.DueDate),
		Tags:        []string{},
		Attachments: []Attachment{},
		Comments:    []Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   createdBy,
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Tags != nil {
		t.Tags = slices.Clone(*r.Tags)
	}
	return t
}

// UpdateTaskRequest is a sparse patch: nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty" binding:"omitempty,min=1"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty" binding:"omitempty,enum"`
	Priority    *TaskPriority `json:"priority,omitempty" binding:"omitempty,enum"`
	AssigneeID  *string       `json:"assigneeId,omitempty"`
	ProjectID   *string       `json:"projectId,omitempty"`
	DueDate     *time.Time    `json:"dueDate,omitempty"`
	Tags        *[]string     `json:"tags,omitempty"`
}

func (r UpdateTaskRequest) Validate() error { return Validate(r) }

func (r UpdateTaskRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil && r.Priority == nil &&
		r.AssigneeID == nil && r.ProjectID == nil && r.DueDate == nil && r.Tags == nil
}

// ApplyTo writes the fields present in the patch onto t. Changing a link id
// drops the matching embedded object, which would otherwise be stale.
func (r UpdateTaskRequest) ApplyTo(t *Task, now time.Time) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = cloneString(r.Description)
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.AssigneeID != nil {
		if t.Assignee != nil && t.Assignee.ID != *r.AssigneeID {
			t.Assignee = nil
		}
		t.AssigneeID = cloneString(r.AssigneeID)
	}
	if r.ProjectID != nil {
		if t.Project != nil && t.Project.ID != *r.ProjectID {
			t.Project = nil
		}
		t.ProjectID = cloneString(r.ProjectID)
	}
	if r.DueDate != nil {
		t.DueDate = cloneTime(r.DueDate)
	}
	if r.Tags != nil {
		t.Tags = slices.Clone(*r.Tags)
	}
	if !r.IsEmpty() {
		t.UpdatedAt = now
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
