package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"tosca-resolver/internal/common"
)

// Diagnostic codes for the validation error taxonomy. Structural codes
// (unknown_type, duplicate_type, inheritance_cycle) usually accompany a
// fatal error; the rest are collected across a full pass.
const (
	CodeUnknownType             = "unknown_type"
	CodeDuplicateType           = "duplicate_type"
	CodeInheritanceCycle        = "inheritance_cycle"
	CodeMissingRequiredProperty = "missing_required_property"
	CodeTypeMismatch            = "type_mismatch"
	CodeConstraintViolation     = "constraint_violation"
	CodeUnknownProperty         = "unknown_property"
	CodeUnsatisfiedRequirement  = "unsatisfied_requirement"
	CodeAmbiguousRequirement    = "ambiguous_requirement_target"
	CodeDuplicateNodeTemplate   = "duplicate_node_template_name"

	CodeMissingRequiredField    = "missing_required_field"
	CodeUnknownField            = "unknown_field"
	CodeInvalidTemplateVersion  = "invalid_template_version"
	CodeInvalidTypeVersion      = "invalid_type_version"
	CodeInvalidConstraint       = "invalid_constraint"
	CodeInvalidDefinition       = "invalid_definition"
	CodeUnknownRelationshipType = "unknown_relationship_type"
)

// Diagnostics holds all diagnostic information from one pass.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Subject identifies the type or node template this relates to (if any).
	Subject string
	// Property identifies the property, attribute, or requirement this
	// relates to (if any).
	Property string
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, subject, property string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		Subject:  subject,
		Property: property,
	})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, subject, property string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		Subject:  subject,
		Property: property,
	})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, subject, property string) {
	d.Infos = append(d.Infos, Diagnostic{
		Severity: SeverityInfo,
		Code:     code,
		Message:  message,
		Subject:  subject,
		Property: property,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// HasCode returns true if any error diagnostic carries the given code.
func (d *Diagnostics) HasCode(code string) bool {
	for _, e := range d.Errors {
		if e.Code == code {
			return true
		}
	}

	return false
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Subject != "" {
		prefix = append(prefix, "["+d.Subject+"]")
	}

	if d.Property != "" {
		prefix = append(prefix, d.Property)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
