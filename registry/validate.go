package registry

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldError represents a validation failure for a specific field.
type FieldError struct {
	Field   string // Field path (e.g., "info.requires_dist[2]")
	Message string // Human-readable error message
}

func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors struct {
	Errors []*FieldError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&b, "\n  - %s", err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying errors for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// Add appends a validation error.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &FieldError{Field: field, Message: message})
}

// ToError returns nil if no errors, otherwise returns self.
func (e *ValidationErrors) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// versionPattern matches the X.Y.Z release form accepted on input.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// IsVersion reports whether v has the numeric X.Y.Z form.
func IsVersion(v string) bool {
	return versionPattern.MatchString(v)
}

// Validate checks that the document carries a concrete version. Requirement
// strings that reduce to no package name are dropped by Dependencies, not
// rejected here.
func (d *Document) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(d.Info.Version) == "" {
		errs.Add("info.version", "required field is missing")
	} else if strings.ContainsAny(d.Info.Version, " \t\n") {
		errs.Add("info.version", "must not contain whitespace")
	}

	return errs.ToError()
}

// Validate checks that the metadata lists at least one version and that
// yanked versions are listed.
func (m *Metadata) Validate() error {
	var errs ValidationErrors

	if len(m.Versions) == 0 {
		errs.Add("versions", "required field is missing or empty")
	}

	for version := range m.YankedVersions {
		if !m.HasVersion(version) {
			errs.Add(
				fmt.Sprintf("yanked_versions[%q]", version),
				"yanked version does not exist in versions list",
			)
		}
	}

	return errs.ToError()
}
