package engine

import (
	"fmt"

	"github.com/ifs-audit/actionplan/internal/audit"
)

// fieldSpec describes one editable finding field: its owning class, its
// accessors, and whether edits stamp the attributed-text sub-record.
type fieldSpec struct {
	class      FieldClass
	attributed bool
	get        func(*audit.Finding) string
	set        func(*audit.Finding, string)
	stamp      func(*audit.Finding, string, string)
}

// fieldRegistry is the closed set of mutable finding fields, keyed by
// wire path. Anything outside it is either write-once identity or
// unknown.
var fieldRegistry = map[string]fieldSpec{
	"siteCorrection": {
		class: ClassSite, attributed: true,
		get:   func(f *audit.Finding) string { return f.SiteCorrection.Text },
		set:   func(f *audit.Finding, v string) { f.SiteCorrection.Text = v },
		stamp: func(f *audit.Finding, by, ts string) { f.SiteCorrection.LastEditBy, f.SiteCorrection.Timestamp = by, ts },
	},
	"siteCorrectiveAction": {
		class: ClassSite, attributed: true,
		get: func(f *audit.Finding) string { return f.SiteCorrectiveAction.Text },
		set: func(f *audit.Finding, v string) { f.SiteCorrectiveAction.Text = v },
		stamp: func(f *audit.Finding, by, ts string) {
			f.SiteCorrectiveAction.LastEditBy, f.SiteCorrectiveAction.Timestamp = by, ts
		},
	},
	"siteResponsible": {
		class: ClassSite,
		get:   func(f *audit.Finding) string { return f.SiteResponsible },
		set:   func(f *audit.Finding, v string) { f.SiteResponsible = v },
	},
	"sitePlannedDate": {
		class: ClassSite,
		get:   func(f *audit.Finding) string { return f.SitePlannedDate },
		set:   func(f *audit.Finding, v string) { f.SitePlannedDate = v },
	},
	"siteActualDate": {
		class: ClassSite,
		get:   func(f *audit.Finding) string { return f.SiteActualDate },
		set:   func(f *audit.Finding, v string) { f.SiteActualDate = v },
	},
	"auditorEffectivenessCheck": {
		class: ClassAuditor, attributed: true,
		get: func(f *audit.Finding) string { return f.AuditorEffectivenessCheck.Text },
		set: func(f *audit.Finding, v string) { f.AuditorEffectivenessCheck.Text = v },
		stamp: func(f *audit.Finding, by, ts string) {
			f.AuditorEffectivenessCheck.LastEditBy, f.AuditorEffectivenessCheck.Timestamp = by, ts
		},
	},
	"auditorValidator": {
		class: ClassAuditor,
		get:   func(f *audit.Finding) string { return f.AuditorValidator },
		set:   func(f *audit.Finding, v string) { f.AuditorValidator = v },
	},
	"auditorValidationDate": {
		class: ClassAuditor,
		get:   func(f *audit.Finding) string { return f.AuditorValidationDate },
		set:   func(f *audit.Finding, v string) { f.AuditorValidationDate = v },
	},
	"actionStatus": {
		class: ClassAuditor,
		get:   func(f *audit.Finding) string { return string(f.ActionStatus) },
		set:   func(f *audit.Finding, v string) { f.ActionStatus = audit.ActionStatus(v) },
	},
}

// identityFields are the write-once fields set at ingestion.
var identityFields = map[string]bool{
	"id":                true,
	"requirementText":   true,
	"auditorEvaluation": true,
	"statusNC":          true,
}

// EditableFields returns the wire paths of all mutable finding fields,
// for CLI flag validation and help text.
func EditableFields() []string {
	out := make([]string, 0, len(fieldRegistry))
	for k := range fieldRegistry {
		out = append(out, k)
	}
	return out
}

// lookupField resolves a wire path to its spec, distinguishing identity
// fields (contract violation) from unknown paths.
func lookupField(path string) (fieldSpec, error) {
	if spec, ok := fieldRegistry[path]; ok {
		return spec, nil
	}
	if identityFields[path] {
		return fieldSpec{}, fmt.Errorf("field %q: %w", path, ErrImmutableField)
	}
	return fieldSpec{}, fmt.Errorf("field %q: %w", path, ErrUnknownField)
}
