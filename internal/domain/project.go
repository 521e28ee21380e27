package domain

import "time"

// ProjectID is a value object for project (tenant) identity.
type ProjectID string

// String returns the canonical string form.
func (p ProjectID) String() string { return string(p) }

// Project is a tenant. Users registered into a project are scoped to it;
// users registered without one are tenant-less.
type Project struct {
	ID        ProjectID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProjectSentinel is the reserved request value meaning "this
// registration is not bound to any existing project". It is never a valid
// project id.
const NewProjectSentinel = "new"

type projectRefKind int

const (
	projectAbsent projectRefKind = iota
	projectNew
	projectExisting
)

// ProjectRef is the tenant context of a registration request: absent, the
// "new" sentinel, or a reference to an existing project. Absent and "new"
// behave identically for uniqueness (tenant-less scope); they are kept
// distinct so the original request intent survives into logs and audit.
type ProjectRef struct {
	kind projectRefKind
	id   ProjectID
}

// ParseProjectRef interprets the raw projectId request field.
func ParseProjectRef(raw string) ProjectRef {
	switch raw {
	case "":
		return AbsentProject()
	case NewProjectSentinel:
		return NewProject()
	default:
		return ExistingProject(ProjectID(raw))
	}
}

// AbsentProject is the ref for a request that carried no projectId.
func AbsentProject() ProjectRef { return ProjectRef{kind: projectAbsent} }

// NewProject is the ref for the "new" sentinel.
func NewProject() ProjectRef { return ProjectRef{kind: projectNew} }

// ExistingProject is the ref for a concrete project id.
func ExistingProject(id ProjectID) ProjectRef {
	return ProjectRef{kind: projectExisting, id: id}
}

// Existing returns the project id and true when the ref names an existing
// project. Both other kinds return false: they select the tenant-less
// uniqueness scope.
func (r ProjectRef) Existing() (ProjectID, bool) {
	if r.kind == projectExisting {
		return r.id, true
	}
	return "", false
}

// IsAbsent reports whether the request carried no projectId at all.
func (r ProjectRef) IsAbsent() bool { return r.kind == projectAbsent }

// String renders the ref the way the request spelled it.
func (r ProjectRef) String() string {
	switch r.kind {
	case projectNew:
		return NewProjectSentinel
	case projectExisting:
		return string(r.id)
	default:
		return ""
	}
}
