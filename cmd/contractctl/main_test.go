package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestMain(m *testing.M) {
	// Keep a developer's .contractctl.toml out of the way.
	dir, err := os.MkdirTemp("", "contractctl")
	if err != nil {
		panic(err)
	}
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.json", `{"title":"x","tags":[]}`)
	bad := writeFile(t, "bad.json", `{"title":"x","priority":"critical"}`)

	code, out, _ := runCLI(t, "", "validate", "-kind", "create-task-request", good)
	assert.Equal(t, 0, code)
	assert.Equal(t, good+": ok\n", out)

	code, out, _ = runCLI(t, "", "validate", "-kind", "create-task-request", good, bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, bad+": priority: ")

	code, out, _ = runCLI(t, `{"success":false}`, "validate", "-kind", "api-response", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "-: ")

	smuggled := writeFile(t, "two.json", `{"title":"x"} {"title":"y","status":"blocked"}`)
	code, out, _ = runCLI(t, "", "validate", "-kind", "create-task-request", smuggled)
	assert.Equal(t, 1, code)
	assert.Equal(t, smuggled+": trailing data after JSON document\n", out)

	code, _, errOut := runCLI(t, "", "validate", "-kind", "sprint", good)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown document kind")
}

func TestValidateDefaultKindFromEnv(t *testing.T) {
	t.Setenv("CONTRACTCTL_DEFAULT_KIND", "add-member-request")
	doc := writeFile(t, "member.json", `{"userId":"u-1","role":"viewer"}`)

	code, out, _ := runCLI(t, "", "validate", doc)
	assert.Equal(t, 0, code, out)
}

func TestEnumsAndKinds(t *testing.T) {
	code, out, _ := runCLI(t, "", "enums")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "TaskStatus: todo in_progress review done archived\n")
	assert.Contains(t, out, "ProjectRole: owner admin member viewer\n")

	code, out, _ = runCLI(t, "", "kinds")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "update-task-request\n")
}

func TestSchema(t *testing.T) {
	code, out, _ := runCLI(t, "", "schema", "-kind", "task-priority-missing")
	assert.Equal(t, 2, code)
	assert.Empty(t, out)

	code, out, _ = runCLI(t, "", "schema", "-kind", "add-member-request")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"required": ["userId", "role"]`)

	code, out, _ = runCLI(t, "", "schema")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, `"$defs"`)
}

func TestRefs(t *testing.T) {
	const task = `{"id":"t-1","title":"x","status":"todo","priority":"low","assigneeId":%q,
		"tags":[],"attachments":[],"comments":[],
		"createdAt":"2026-10-19T09:30:00Z","updatedAt":"2026-10-19T09:30:00Z","createdBy":"u-1"}`
	users := `"users":[{"id":"u-1","email":"ada@example.com","name":"Ada"}]`

	clean := writeFile(t, "clean.json", `{`+users+`,"tasks":[`+fmt.Sprintf(task, "u-1")+`]}`)
	code, out, _ := runCLI(t, "", "refs", clean)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "all references resolve")

	broken := writeFile(t, "broken.json", `{`+users+`,"tasks":[`+fmt.Sprintf(task, "u-ghost")+`]}`)
	dbPath := filepath.Join(t.TempDir(), "refs.db")
	code, out, _ = runCLI(t, "", "-fixture-db", dbPath, "refs", broken)
	assert.Equal(t, 1, code)
	assert.Equal(t, "task t-1: assigneeId \"u-ghost\" does not resolve\n", out)
	assert.FileExists(t, dbPath)

	// A kept database is emptied before the next run.
	code, _, _ = runCLI(t, "", "-fixture-db", dbPath, "refs", clean)
	assert.Equal(t, 0, code)
}

func TestUsageErrors(t *testing.T) {
	code, _, errOut := runCLI(t, "")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage:")

	code, _, errOut = runCLI(t, "", "deploy")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "deploy"`)

	code, _, _ = runCLI(t, "", "-log-level", "loud", "enums")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t, "", "refs")
	assert.Equal(t, 2, code)
}
