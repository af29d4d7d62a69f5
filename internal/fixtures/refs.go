package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/xenon007/todo-contract/models"
)

// Dangling is a link whose target is not in the bundle.
type Dangling struct {
	Entity string
	ID     string
	Field  string
	Ref    string
}

func (d Dangling) String() string {
	return fmt.Sprintf("%s %s: %s %q does not resolve", d.Entity, d.ID, d.Field, d.Ref)
}

// Load inserts every record of b in one transaction. Tasks embedded in a
// project inherit the project's id when they carry no projectId of their own.
// A user holding two roles on one project is rejected.
func (s *Store) Load(ctx context.Context, b Bundle) error {
	if s.db == nil {
		return ErrNoDatabase
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range b.Users {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO users(id, email, name) VALUES(?, ?, ?)`, u.ID, u.Email, u.Name); err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
	}

	tasks := append([]models.Task(nil), b.Tasks...)
	for _, p := range b.Projects {
		if _, err := tx.ExecContext(ctx, `INSERT INTO projects(id, name, status, owner_id) VALUES(?, ?, ?, ?)`,
			p.ID, p.Name, string(p.Status), p.OwnerID); err != nil {
			return fmt.Errorf("insert project %s: %w", p.ID, err)
		}
		for _, m := range p.Members {
			if _, err := tx.ExecContext(ctx, `INSERT INTO project_members(project_id, user_id, role) VALUES(?, ?, ?)`,
				p.ID, m.UserID, string(m.Role)); err != nil {
				return fmt.Errorf("insert member %s of project %s: %w", m.UserID, p.ID, err)
			}
		}
		for _, t := range p.Tasks {
			if t.ProjectID == nil {
				id := p.ID
				t.ProjectID = &id
			}
			tasks = append(tasks, t)
		}
	}

	for _, t := range tasks {
		if err := insertTask(ctx, tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	s.logger.Debug("fixture bundle loaded",
		slog.Int("users", len(b.Users)),
		slog.Int("projects", len(b.Projects)),
		slog.Int("tasks", len(tasks)))
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, t models.Task) error {
	assignee, hasAssignee := t.ResolvedAssigneeID()
	project, hasProject := t.ResolvedProjectID()
	_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tasks(id, title, status, priority, project_id, assignee_id, created_by)
        VALUES(?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, string(t.Status), string(t.Priority), nullable(project, hasProject), nullable(assignee, hasAssignee), t.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", t.ID, err)
	}
	for _, c := range t.Comments {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO comments(id, task_id, author_id) VALUES(?, ?, ?)`, c.ID, t.ID, c.AuthorID); err != nil {
			return fmt.Errorf("insert comment %s: %w", c.ID, err)
		}
	}
	for _, a := range t.Attachments {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO attachments(id, task_id, uploaded_by, size) VALUES(?, ?, ?, ?)`, a.ID, t.ID, a.UploadedBy, a.Size); err != nil {
			return fmt.Errorf("insert attachment %s: %w", a.ID, err)
		}
	}
	return nil
}

// nullable stores an absent link as NULL. A present but empty id is kept so
// CheckReferences reports it.
func nullable(s string, present bool) sql.NullString {
	return sql.NullString{String: s, Valid: present}
}

const danglingQuery = `
SELECT 'project', p.id, 'ownerId', p.owner_id
    FROM projects p LEFT JOIN users u ON u.id = p.owner_id
    WHERE u.id IS NULL
UNION ALL
SELECT 'project', m.project_id, 'members.userId', m.user_id
    FROM project_members m LEFT JOIN users u ON u.id = m.user_id
    WHERE u.id IS NULL
UNION ALL
SELECT 'task', t.id, 'assigneeId', t.assignee_id
    FROM tasks t LEFT JOIN users u ON u.id = t.assignee_id
    WHERE t.assignee_id IS NOT NULL AND u.id IS NULL
UNION ALL
SELECT 'task', t.id, 'createdBy', t.created_by
    FROM tasks t LEFT JOIN users u ON u.id = t.created_by
    WHERE u.id IS NULL
UNION ALL
SELECT 'task', t.id, 'projectId', t.project_id
    FROM tasks t LEFT JOIN projects p ON p.id = t.project_id
    WHERE t.project_id IS NOT NULL AND p.id IS NULL
UNION ALL
SELECT 'comment', c.id, 'authorId', c.author_id
    FROM comments c LEFT JOIN users u ON u.id = c.author_id
    WHERE u.id IS NULL
UNION ALL
SELECT 'attachment', a.id, 'uploadedBy', a.uploaded_by
    FROM attachments a LEFT JOIN users u ON u.id = a.uploaded_by
    WHERE u.id IS NULL
ORDER BY 1, 2, 3, 4`

// CheckReferences reports every link that points at a missing record.
func (s *Store) CheckReferences(ctx context.Context) ([]Dangling, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	rows, err := s.db.QueryContext(ctx, danglingQuery)
	if err != nil {
		return nil, fmt.Errorf("check references: %w", err)
	}
	defer rows.Close()

	var out []Dangling
	for rows.Next() {
		var d Dangling
		if err := rows.Scan(&d.Entity, &d.ID, &d.Field, &d.Ref); err != nil {
			return nil, fmt.Errorf("scan reference: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Check loads b into a fresh in-memory database and returns its dangling links.
func Check(ctx context.Context, b Bundle, logger *slog.Logger) ([]Dangling, error) {
	s, err := Open(ctx, MemoryPath, logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.Load(ctx, b); err != nil {
		return nil, err
	}
	return s.CheckReferences(ctx)
}
