package audit

import "fmt"

// Role identifies one of the three parties the package is handed between.
// Wire values are the original interface names and must not be renamed.
type Role string

const (
	RoleAuditor  Role = "Auditeur"
	RoleSite     Role = "Site"
	RoleReviewer Role = "Reviewer"
)

// ParseRole validates a wire value against the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAuditor, RoleSite, RoleReviewer:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Status is the document workflow state. It gates which role may mutate
// which finding fields and whether a party may load the package at all.
type Status string

const (
	StatusInitial       Status = "Initial"
	StatusSiteInput     Status = "SiteInputRequired"
	StatusAuditorReview Status = "AuditorReview"
	StatusFinalized     Status = "Finalized"
)

// ParseStatus validates a wire value against the closed status set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusInitial, StatusSiteInput, StatusAuditorReview, StatusFinalized:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown document status %q", s)
}

// Valid reports whether the status is one of the closed set.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Terminal reports whether the document accepts no further mutation.
func (s Status) Terminal() bool {
	return s == StatusFinalized
}

// ActionStatus tracks the resolution of a single finding. The wire
// values are the original French labels; they are identifiers here, not
// display text.
type ActionStatus string

const (
	ActionOpen            ActionStatus = "Ouvert"
	ActionInProgress      ActionStatus = "En cours"
	ActionClosed          ActionStatus = "Clôturé"
	ActionPendingReviewer ActionStatus = "En attente Reviewer"
)

// ParseActionStatus validates a wire value against the closed set.
func ParseActionStatus(s string) (ActionStatus, error) {
	switch ActionStatus(s) {
	case ActionOpen, ActionInProgress, ActionClosed, ActionPendingReviewer:
		return ActionStatus(s), nil
	}
	return "", fmt.Errorf("unknown action status %q", s)
}

// Valid reports whether the action status is one of the closed set.
func (a ActionStatus) Valid() bool {
	_, err := ParseActionStatus(string(a))
	return err == nil
}

// EventKind categorizes log entries. Wire values match the original
// package format.
type EventKind string

const (
	EventImported        EventKind = "ExcelImported"
	EventLoaded          EventKind = "PackageLoaded"
	EventExported        EventKind = "PackageExported"
	EventFieldUpdated    EventKind = "FieldUpdated"
	EventCommentAdded    EventKind = "CommentAdded"
	EventEvidenceAdded   EventKind = "ProofAdded"
	EventEvidenceRemoved EventKind = "ProofRemoved"
)

// ParseEventKind validates a wire value against the closed event set.
func ParseEventKind(s string) (EventKind, error) {
	switch EventKind(s) {
	case EventImported, EventLoaded, EventExported, EventFieldUpdated,
		EventCommentAdded, EventEvidenceAdded, EventEvidenceRemoved:
		return EventKind(s), nil
	}
	return "", fmt.Errorf("unknown event kind %q", s)
}

// Valid reports whether the event kind is one of the closed set.
func (e EventKind) Valid() bool {
	_, err := ParseEventKind(string(e))
	return err == nil
}
