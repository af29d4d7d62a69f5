package fixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenon007/todo-contract/models"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readFixture(t *testing.T) Bundle {
	t.Helper()
	b, err := ReadBundle(filepath.Join("testdata", "bundle.json"))
	require.NoError(t, err)
	return b
}

func TestFixtureBundleResolves(t *testing.T) {
	b := readFixture(t)
	require.Len(t, b.Projects, 1)
	require.Len(t, b.Tasks, 1)

	dangling, err := Check(context.Background(), b, quietLogger())
	require.NoError(t, err)
	assert.Empty(t, dangling)
}

func TestEveryAssigneeResolves(t *testing.T) {
	b := readFixture(t)
	users := map[string]struct{}{}
	for _, u := range b.Users {
		users[u.ID] = struct{}{}
	}

	var tasks []models.Task
	tasks = append(tasks, b.Tasks...)
	for _, p := range b.Projects {
		tasks = append(tasks, p.Tasks...)
	}
	for _, task := range tasks {
		if id, ok := task.ResolvedAssigneeID(); ok {
			_, known := users[id]
			assert.True(t, known, "task %s assignee %s", task.ID, id)
		}
	}
}

func TestDanglingReferencesReported(t *testing.T) {
	b := readFixture(t)
	ghost := "u-ghost"
	missingProject := "p-gone"
	b.Tasks = append(b.Tasks, models.Task{
		ID:         "t-orphan",
		Title:      "orphan",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityLow,
		AssigneeID: &ghost,
		ProjectID:  &missingProject,
		CreatedBy:  "u-ada",
		Comments:   []models.Comment{{ID: "c-ghost", Content: "boo", AuthorID: ghost}},
	})
	b.Projects[0].OwnerID = "u-nobody"

	dangling, err := Check(context.Background(), b, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []Dangling{
		{Entity: "comment", ID: "c-ghost", Field: "authorId", Ref: "u-ghost"},
		{Entity: "project", ID: "p-launch", Field: "ownerId", Ref: "u-nobody"},
		{Entity: "task", ID: "t-orphan", Field: "assigneeId", Ref: "u-ghost"},
		{Entity: "task", ID: "t-orphan", Field: "projectId", Ref: "p-gone"},
	}, dangling)
	assert.Equal(t, `task t-orphan: assigneeId "u-ghost" does not resolve`, dangling[2].String())
}

func TestEmptyLinksAreDangling(t *testing.T) {
	b := readFixture(t)
	empty := ""
	b.Tasks = append(b.Tasks, models.Task{
		ID:         "t-blank",
		Title:      "blank links",
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityLow,
		AssigneeID: &empty,
		ProjectID:  &empty,
		CreatedBy:  "u-ada",
	})

	dangling, err := Check(context.Background(), b, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []Dangling{
		{Entity: "task", ID: "t-blank", Field: "assigneeId", Ref: ""},
		{Entity: "task", ID: "t-blank", Field: "projectId", Ref: ""},
	}, dangling)
}

func TestEmbeddedTasksInheritProject(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, MemoryPath, quietLogger())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Load(ctx, readFixture(t)))

	var projectID string
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT project_id FROM tasks WHERE id = 't-embedded'`).Scan(&projectID))
	assert.Equal(t, "p-launch", projectID)
}

func TestDuplicateMemberRejected(t *testing.T) {
	b := readFixture(t)
	p := &b.Projects[0]
	p.Members = append(p.Members, models.ProjectMember{UserID: "u-grace", Role: models.ProjectRoleViewer})

	_, err := Check(context.Background(), b, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert member u-grace")
}

func TestFileDatabaseAndClose(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "fixtures.db")
	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.CheckReferences(ctx)
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.ErrorIs(t, s.Load(ctx, Bundle{}), ErrNoDatabase)

	_, err = Open(ctx, "", nil)
	assert.Error(t, err)
}
