package pidstore

// Persistent identifier storage and resolution. The validation core only
// depends on the interfaces here; BoltStore provides a working
// implementation for the service and for tests.

import (
	"github.com/google/uuid"
)

// a persistent identifier and the object it is assigned to
type PID struct {
	// identifier scheme ("doi", "recid", "depid", ...)
	Type string `json:"pid_type"`
	// the identifier value within its scheme
	Value string `json:"pid_value"`
	// UUID of the assigned object (uuid.Nil if unassigned)
	Object uuid.UUID `json:"object_uuid"`
}

// HasObject reports whether the PID has been assigned to an object.
func (p PID) HasObject() bool {
	return p.Object != uuid.Nil
}

// Store is the persistent-identifier store the validation core consults.
type Store interface {
	// looks up a PID by scheme and value, returning a NotFoundError if absent
	Get(pidType, value string) (PID, error)
	// looks up a PID and the record document assigned to it
	Resolve(pidType, value string) (PID, map[string]any, error)
}

// ReferenceResolver dereferences reference pointers (JSON documents of the
// form {"$ref": ...}) found in license and grant fields.
type ReferenceResolver interface {
	Dereference(ref string) (map[string]any, error)
}

// a PID value inside a relation graph
type RelatedPID struct {
	Type  string `json:"pid_type"`
	Value string `json:"pid_value"`
}

// version relation information for one record in a version chain
type VersionRelation struct {
	// position of this record in the chain
	Index int `json:"index"`
	// true if this record is the newest published version
	IsLast bool `json:"is_last"`
	// the newest published version in the chain
	LastChild *RelatedPID `json:"last_child,omitempty"`
	// the unpublished draft deposit of the chain, if one exists; never
	// exposed on published-record views
	DraftChildDeposit *RelatedPID `json:"draft_child_deposit,omitempty"`
}

// the relation graph for a record
type Relations struct {
	Version []VersionRelation `json:"version,omitempty"`
}

// RelationResolver produces the relation graph for a record's PID.
type RelationResolver interface {
	RelationsFor(pid RelatedPID) (Relations, error)
}
