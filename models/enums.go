package models

import (
	"errors"
	"fmt"
)

// ErrUnknownToken is returned when a string is not a member of a closed enumeration.
var ErrUnknownToken = errors.New("unknown enumeration token")

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusArchived  ProjectStatus = "archived"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// ProjectRole is the role a member holds within a project.
type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleAdmin  ProjectRole = "admin"
	ProjectRoleMember ProjectRole = "member"
	ProjectRoleViewer ProjectRole = "viewer"
)

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusArchived   TaskStatus = "archived"
)

// TaskPriority ranks tasks from low to urgent.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Defaults applied by the Create request builders when the caller leaves the field out.
const (
	DefaultProjectStatus = ProjectStatusActive
	DefaultTaskStatus    = TaskStatusTodo
	DefaultTaskPriority  = TaskPriorityMedium
)

// Valid reports whether s is one of the declared tokens.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted:
		return true
	}
	return false
}

func (s ProjectStatus) String() string { return string(s) }

// MarshalText refuses to encode a token outside the closed set.
func (s ProjectStatus) MarshalText() ([]byte, error) { return marshalToken("project status", s) }

func (s *ProjectStatus) UnmarshalText(b []byte) error {
	return unmarshalToken("project status", b, s)
}

// ParseProjectStatus converts a wire token into a ProjectStatus.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	return parseToken[ProjectStatus]("project status", s)
}

// AllProjectStatuses returns every project status in declaration order.
func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{ProjectStatusActive, ProjectStatusArchived, ProjectStatusCompleted}
}

// Valid reports whether r is one of the declared tokens.
func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectRoleOwner, ProjectRoleAdmin, ProjectRoleMember, ProjectRoleViewer:
		return true
	}
	return false
}

func (r ProjectRole) String() string { return string(r) }

func (r ProjectRole) MarshalText() ([]byte, error) { return marshalToken("project role", r) }

func (r *ProjectRole) UnmarshalText(b []byte) error {
	return unmarshalToken("project role", b, r)
}

// ParseProjectRole converts a wire token into a ProjectRole.
func ParseProjectRole(s string) (ProjectRole, error) {
	return parseToken[ProjectRole]("project role", s)
}

// AllProjectRoles returns every role from most to least privileged.
func AllProjectRoles() []ProjectRole {
	return []ProjectRole{ProjectRoleOwner, ProjectRoleAdmin, ProjectRoleMember, ProjectRoleViewer}
}

// Valid reports whether s is one of the declared tokens.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone, TaskStatusArchived:
		return true
	}
	return false
}

func (s TaskStatus) String() string { return string(s) }

func (s TaskStatus) MarshalText() ([]byte, error) { return marshalToken("task status", s) }

func (s *TaskStatus) UnmarshalText(b []byte) error {
	return unmarshalToken("task status", b, s)
}

// ParseTaskStatus converts a wire token into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	return parseToken[TaskStatus]("task status", s)
}

// AllTaskStatuses returns every task status in board order.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusReview, TaskStatusDone, TaskStatusArchived}
}

// Valid reports whether p is one of the declared tokens.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

func (p TaskPriority) String() string { return string(p) }

func (p TaskPriority) MarshalText() ([]byte, error) { return marshalToken("task priority", p) }

func (p *TaskPriority) UnmarshalText(b []byte) error {
	return unmarshalToken("task priority", b, p)
}

// ParseTaskPriority converts a wire token into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	return parseToken[TaskPriority]("task priority", s)
}

// AllTaskPriorities returns every priority from lowest to highest.
func AllTaskPriorities() []TaskPriority {
	return []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent}
}

// Enumeration describes one closed set of tokens by its contract name.
type Enumeration struct {
	Name   string
	Tokens []string
}

// Enumerations lists every enumeration in the contract in a stable order.
func Enumerations() []Enumeration {
	return []Enumeration{
		{Name: "ProjectStatus", Tokens: tokens(AllProjectStatuses())},
		{Name: "ProjectRole", Tokens: tokens(AllProjectRoles())},
		{Name: "TaskStatus", Tokens: tokens(AllTaskStatuses())},
		{Name: "TaskPriority", Tokens: tokens(AllTaskPriorities())},
	}
}

type token interface {
	~string
	Valid() bool
}

func parseToken[T token](kind, s string) (T, error) {
	v := T(s)
	if !v.Valid() {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", kind, s, ErrUnknownToken)
	}
	return v, nil
}

func marshalToken[T token](kind string, v T) ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%s %q: %w", kind, string(v), ErrUnknownToken)
	}
	return []byte(v), nil
}

func unmarshalToken[T token](kind string, b []byte, dst *T) error {
	v, err := parseToken[T](kind, string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func tokens[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
