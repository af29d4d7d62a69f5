package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks a value that breaks a contract rule.
var ErrInvalid = errors.New("invalid value")

// TagName is the struct tag the contract rules live in. It matches gin's
// binding tag so handlers and Validate enforce the same rules.
const TagName = "binding"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the contract rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName(TagName)
		if err := RegisterValidations(v); err != nil {
			panic(fmt.Sprintf("models: register validations: %v", err))
		}
		validate = v
	})
	return validate
}

// RegisterValidations installs the contract rules on v. Call it on gin's
// validator engine so request binding enforces the same rules.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonFieldName)
	if err := v.RegisterValidation("enum", validEnum); err != nil {
		return fmt.Errorf("register enum: %w", err)
	}
	v.RegisterStructValidation(projectRules, Project{})
	v.RegisterStructValidation(settingsRules, ProjectSettings{})
	v.RegisterStructValidation(settingsPatchRules, ProjectSettingsPatch{})
	v.RegisterStructValidation(taskRules, Task{})
	return nil
}

// Validate checks v against its binding rules.
func Validate(v any) error {
	return TranslateValidation(Validator().Struct(v))
}

// FieldError is a single broken rule.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e FieldError) String() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Rule)
}

// ValidationError lists every broken rule of a value.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// TranslateValidation converts validator output into a *ValidationError.
// Other errors are wrapped with ErrInvalid; nil stays nil.
func TranslateValidation(err error) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(ves))}
	for _, fe := range ves {
		out.Fields = append(out.Fields, FieldError{
			Field: trimNamespace(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// trimNamespace drops the root type name, leaving a json-style path.
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func validEnum(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}
	e, ok := field.Interface().(interface{ Valid() bool })
	return ok && e.Valid()
}

func projectRules(sl validator.StructLevel) {
	p := sl.Current().Interface().(Project)
	seen := make(map[string]struct{}, len(p.Members))
	for _, m := range p.Members {
		if _, dup := seen[m.UserID]; dup {
			sl.ReportError(p.Members, "members", "Members", "unique_member", m.UserID)
			return
		}
		seen[m.UserID] = struct{}{}
	}
}

func settingsRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(ProjectSettings)
	if s.EnableFileUploads && s.MaxFileSize < 0 {
		sl.ReportError(s.MaxFileSize, "maxFileSize", "MaxFileSize", "gte", "0")
	}
}

func settingsPatchRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(ProjectSettingsPatch)
	if s.EnableFileUploads != nil && *s.EnableFileUploads && s.MaxFileSize != nil && *s.MaxFileSize < 0 {
		sl.ReportError(*s.MaxFileSize, "maxFileSize", "MaxFileSize", "gte", "0")
	}
}

// taskRules rejects an embedded object that disagrees with its id link.
func taskRules(sl validator.StructLevel) {
	t := sl.Current().Interface().(Task)
	if t.AssigneeID != nil && t.Assignee != nil && t.Assignee.ID != *t.AssigneeID {
		sl.ReportError(t.Assignee, "assignee", "Assignee", "eqfield", "assigneeId")
	}
	if t.ProjectID != nil && t.Project != nil && t.Project.ID != *t.ProjectID {
		sl.ReportError(t.Project, "project", "Project", "eqfield", "projectId")
	}
}
