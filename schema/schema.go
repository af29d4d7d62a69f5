// Package schema checks JSON documents against the shared contract.
//
// The contract is embedded as a JSON Schema (draft 2020-12) document whose
// $defs mirror the shapes in package models. A Checker compiles it once and
// is safe for concurrent use.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/xenon007/todo-contract/models"
)

//go:embed contract.schema.json
var contract []byte

// URL is the $id of the embedded contract document.
const URL = "https://schemas.xenon007.dev/todo/contract.schema.json"

// ErrUnknownKind is returned for a kind the contract does not define.
var ErrUnknownKind = errors.New("unknown document kind")

// kinds maps the command-line name of each shape to its $defs entry.
var kinds = map[string]string{
	"user":                   "User",
	"project":                "Project",
	"project-member":         "ProjectMember",
	"project-settings":       "ProjectSettings",
	"task":                   "Task",
	"attachment":             "Attachment",
	"comment":                "Comment",
	"create-project-request": "CreateProjectRequest",
	"update-project-request": "UpdateProjectRequest",
	"add-member-request":     "AddMemberRequest",
	"create-task-request":    "CreateTaskRequest",
	"update-task-request":    "UpdateTaskRequest",
	"api-response":           "APIResponse",
	"paginated-response":     "PaginatedResponse",
	"api-error":              "APIError",
}

// Kinds returns the checkable kinds in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Document returns the raw embedded contract.
func Document() []byte {
	return bytes.Clone(contract)
}

// Definition returns the raw $defs entry for kind.
func Definition(kind string) (json.RawMessage, error) {
	name, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	defs, err := definitions()
	if err != nil {
		return nil, err
	}
	return defs[name], nil
}

func definitions() (map[string]json.RawMessage, error) {
	var doc struct {
		Defs map[string]json.RawMessage `json:"$defs"`
	}
	if err := json.Unmarshal(contract, &doc); err != nil {
		return nil, fmt.Errorf("decode contract: %w", err)
	}
	return doc.Defs, nil
}

// Violation is one failed assertion inside a document.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

// Violations is returned by Check when a document breaks the contract.
type Violations struct {
	Kind  string
	Items []Violation
}

func (v *Violations) Error() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = item.String()
	}
	return fmt.Sprintf("%s does not conform: %s", v.Kind, strings.Join(parts, "; "))
}

func (v *Violations) Unwrap() error { return models.ErrInvalid }

// Checker validates documents by kind.
type Checker struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles the embedded contract.
func New() (*Checker, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(URL, bytes.NewReader(contract)); err != nil {
		return nil, fmt.Errorf("add contract resource: %w", err)
	}

	c := &Checker{schemas: make(map[string]*jsonschema.Schema, len(kinds))}
	for kind, def := range kinds {
		s, err := compiler.Compile(URL + "#/$defs/" + def)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", def, err)
		}
		c.schemas[kind] = s
	}
	return c, nil
}

// Check validates data as a document of the given kind. It returns
// *Violations when the document breaks the contract.
func (c *Checker) Check(kind string, data []byte) error {
	s, ok := c.schemas[kind]
	if !ok {
		return fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &Violations{Kind: kind, Items: []Violation{{Message: "malformed JSON: " + err.Error()}}}
	}
	if _, err := dec.Token(); err != io.EOF {
		return &Violations{Kind: kind, Items: []Violation{{Message: "trailing data after JSON document"}}}
	}

	out := &Violations{Kind: kind}
	if err := s.Validate(doc); err != nil {
		collect(out, err)
	}
	if kind == "paginated-response" && len(out.Items) == 0 {
		checkPagination(out, data)
	}
	if len(out.Items) > 0 {
		return out
	}
	return nil
}

// checkPagination enforces totalPages = ceil(total / limit), which JSON
// Schema cannot express.
// The schema accepts integral floats such as 10.0, so the block is read
// through json.Number.
func checkPagination(out *Violations, data []byte) {
	var doc struct {
		Pagination struct {
			Page       json.Number `json:"page"`
			Limit      json.Number `json:"limit"`
			Total      json.Number `json:"total"`
			TotalPages json.Number `json:"totalPages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		out.Items = append(out.Items, Violation{Path: "pagination", Message: err.Error()})
		return
	}
	raw := doc.Pagination
	var p models.Pagination
	for _, f := range []struct {
		name string
		n    json.Number
		dst  *int
	}{
		{"page", raw.Page, &p.Page},
		{"limit", raw.Limit, &p.Limit},
		{"total", raw.Total, &p.Total},
		{"totalPages", raw.TotalPages, &p.TotalPages},
	} {
		v, ok := integer(f.n)
		if !ok {
			out.Items = append(out.Items, Violation{Path: "pagination." + f.name, Message: fmt.Sprintf("%s is out of range", f.n)})
			return
		}
		*f.dst = v
	}
	if !p.Consistent() {
		out.Items = append(out.Items, Violation{
			Path:    "pagination.totalPages",
			Message: fmt.Sprintf("expected %d for total %d and limit %d, got %d", models.TotalPages(p.Total, p.Limit), p.Total, p.Limit, p.TotalPages),
		})
	}
}

// integer converts a JSON number with no fractional part to int.
func integer(n json.Number) (int, bool) {
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		i = int64(f)
	}
	if int64(int(i)) != i {
		return 0, false
	}
	return int(i), true
}

func collect(out *Violations, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		out.Items = append(out.Items, Violation{Message: err.Error()})
		return
	}
	collectCauses(out, ve)
}

func collectCauses(out *Violations, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		out.Items = append(out.Items, Violation{
			Path:    pointerToPath(ve.InstanceLocation),
			Message: ve.Message,
		})
		return
	}
	for _, cause := range ve.Causes {
		collectCauses(out, cause)
	}
}

// pointerToPath turns "/tasks/0/status" into "tasks[0].status".
func pointerToPath(ptr string) string {
	if ptr == "" || ptr == "/" {
		return ""
	}
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if isIndex(seg) {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
