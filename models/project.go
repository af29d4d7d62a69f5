package models

import (
	"encoding/json"
	"time"
)

// User is the identity other shapes point at by id. Account and session
// shapes belong to the auth service and are not part of this contract.
type User struct {
	ID        string  `json:"id" binding:"required"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Project groups tasks and the members allowed to work on them.
//
// Owner and the member User objects are denormalized copies; OwnerID and
// ProjectMember.UserID are the canonical links.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" binding:"required"`
	Description *string         `json:"description,omitempty"`
	Status      ProjectStatus   `json:"status" binding:"enum"`
	OwnerID     string          `json:"ownerId" binding:"required"`
	Owner       User            `json:"owner"`
	Members     []ProjectMember `json:"members" binding:"dive"`
	Tasks       []Task          `json:"tasks"`
	Tags        []string        `json:"tags"`
	Settings    ProjectSettings `json:"settings"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// MarshalJSON keeps required collections as arrays even when they are nil.
func (p Project) MarshalJSON() ([]byte, error) {
	type wire Project
	w := wire(p)
	if w.Members == nil {
		w.Members = []ProjectMember{}
	}
	if w.Tasks == nil {
		w.Tasks = []Task{}
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return json.Marshal(w)
}

// Member returns the membership record for userID, if any.
func (p Project) Member(userID string) (ProjectMember, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return ProjectMember{}, false
}

// ProjectMember binds a user to a project with exactly one role.
type ProjectMember struct {
	UserID   string      `json:"userId" binding:"required"`
	User     User        `json:"user"`
	Role     ProjectRole `json:"role" binding:"enum"`
	JoinedAt time.Time   `json:"joinedAt"`
}

// ProjectSettings are the per-project feature switches.
//
// The unit of MaxFileSize is not pinned down by the contract; producers and
// consumers must agree on it out of band.
type ProjectSettings struct {
	AllowPublicAccess  bool     `json:"allowPublicAccess"`
	EnableTimeTracking bool     `json:"enableTimeTracking"`
	EnableFileUploads  bool     `json:"enableFileUploads"`
	MaxFileSize        int64    `json:"maxFileSize"`
	AllowedFileTypes   []string `json:"allowedFileTypes"`
}

func (s ProjectSettings) MarshalJSON() ([]byte, error) {
	type wire ProjectSettings
	w := wire(s)
	if w.AllowedFileTypes == nil {
		w.AllowedFileTypes = []string{}
	}
	return json.Marshal(w)
}

// Validate checks the settings invariants.
func (s ProjectSettings) Validate() error {
	return Validate(s)
}
