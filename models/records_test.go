package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskWireOmitsAbsentFields(t *testing.T) {
	task := Task{
		ID:        "t-1",
		Title:     "ship it",
		Status:    TaskStatusTodo,
		Priority:  TaskPriorityUrgent,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: "u-1",
	}
	b, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "t-1",
		"title": "ship it",
		"status": "todo",
		"priority": "urgent",
		"tags": [],
		"attachments": [],
		"comments": [],
		"createdAt": "2026-10-19T09:30:00Z",
		"updatedAt": "2026-10-19T09:30:00Z",
		"createdBy": "u-1"
	}`, string(b))
}

func TestDescriptionPresentAsEmpty(t *testing.T) {
	var absent, empty Task
	require.NoError(t, json.Unmarshal([]byte(`{"title":"a","status":"todo","priority":"low"}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"title":"a","status":"todo","priority":"low","description":""}`), &empty))

	assert.Nil(t, absent.Description)
	require.NotNil(t, empty.Description)
	assert.Equal(t, "", *empty.Description)
}

func TestProjectTaskMutualReference(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600))
	owner := User{ID: "u-1", Email: "ada@example.com", Name: "Ada"}
	project := Project{
		ID:      "p-1",
		Name:    "Launch",
		Status:  ProjectStatusActive,
		OwnerID: owner.ID,
		Owner:   owner,
		Members: []ProjectMember{{UserID: owner.ID, User: owner, Role: ProjectRoleOwner, JoinedAt: now}},
		Tags:    []string{"q4"},
		Settings: ProjectSettings{
			EnableFileUploads: true,
			MaxFileSize:       10_485_760,
			AllowedFileTypes:  []string{"image/png"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	task := Task{
		ID:         "t-1",
		Title:      "press release",
		Status:     TaskStatusInProgress,
		Priority:   TaskPriorityHigh,
		AssigneeID: ptr(owner.ID),
		Assignee:   &owner,
		ProjectID:  ptr(project.ID),
		Project:    &project,
		DueDate:    &due,
		Tags:       []string{},
		Attachments: []Attachment{{
			ID: "a-1", Filename: "f1.png", OriginalName: "draft.png", MimeType: "image/png",
			Size: 2048, URL: "https://files.example.com/f1.png", UploadedAt: now, UploadedBy: owner.ID,
		}},
		Comments: []Comment{{
			ID: "c-1", Content: "looks good", AuthorID: owner.ID, Author: owner, CreatedAt: now, UpdatedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: owner.ID,
	}
	project.Tasks = []Task{{ID: "t-2", Title: "sibling", Status: TaskStatusDone, Priority: TaskPriorityLow, CreatedBy: owner.ID}}

	require.NoError(t, Validate(task))

	b, err := json.Marshal(task)
	require.NoError(t, err)

	var back Task
	require.NoError(t, json.Unmarshal(b, &back))

	// Timestamps come back in UTC offset form; compare instants.
	opts := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
	want := task
	wantProject := project
	wantProject.Tasks[0].Tags = []string{}
	wantProject.Tasks[0].Attachments = []Attachment{}
	wantProject.Tasks[0].Comments = []Comment{}
	want.Project = &wantProject
	if diff := cmp.Diff(want, back, opts); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	id, ok := back.ResolvedProjectID()
	assert.True(t, ok)
	assert.Equal(t, "p-1", id)
}

func TestResolvedIDsPreferLinks(t *testing.T) {
	task := Task{Assignee: &User{ID: "u-embedded"}}
	id, ok := task.ResolvedAssigneeID()
	assert.True(t, ok)
	assert.Equal(t, "u-embedded", id)

	task.AssigneeID = ptr("u-link")
	id, _ = task.ResolvedAssigneeID()
	assert.Equal(t, "u-link", id)

	_, ok = Task{}.ResolvedProjectID()
	assert.False(t, ok)
}

func TestTaskOverdue(t *testing.T) {
	past := now.Add(-time.Hour)
	open := Task{Status: TaskStatusReview, DueDate: &past}
	assert.True(t, open.Overdue(now))

	open.Status = TaskStatusDone
	assert.False(t, open.Overdue(now))
	assert.False(t, Task{Status: TaskStatusTodo}.Overdue(now))
}

func TestRecordInvariants(t *testing.T) {
	t.Run("negative max file size with uploads enabled", func(t *testing.T) {
		err := ProjectSettings{EnableFileUploads: true, MaxFileSize: -1}.Validate()
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "maxFileSize", ve.Fields[0].Field)
	})

	t.Run("negative max file size with uploads disabled", func(t *testing.T) {
		require.NoError(t, ProjectSettings{MaxFileSize: -1}.Validate())
	})

	t.Run("negative attachment size", func(t *testing.T) {
		err := Validate(Attachment{Filename: "x", Size: -5, UploadedBy: "u-1"})
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("one role per member", func(t *testing.T) {
		owner := User{ID: "u-1"}
		p := Project{
			Name: "dup", Status: ProjectStatusActive, OwnerID: "u-1", Owner: owner,
			Members: []ProjectMember{
				{UserID: "u-1", User: owner, Role: ProjectRoleOwner},
				{UserID: "u-1", User: owner, Role: ProjectRoleViewer},
			},
		}
		err := Validate(p)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "unique_member", ve.Fields[0].Rule)
	})

	t.Run("embedded assignee must match link", func(t *testing.T) {
		task := Task{
			Title: "x", Status: TaskStatusTodo, Priority: TaskPriorityLow, CreatedBy: "u-1",
			AssigneeID: ptr("u-1"), Assignee: &User{ID: "u-2"},
		}
		err := Validate(task)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "assignee", ve.Fields[0].Field)
	})
}
