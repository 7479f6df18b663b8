package deposit

// The deposit metadata model: bibliographic metadata for a scholarly-deposit
// record, matching the wire format accepted and produced by the validator.

import (
	"encoding/json"
	"fmt"

	"github.com/oarepo/depositd/accessright"
)

// the schema-version URL stamped onto every validated metadata document
const SchemaURL = "https://oarepo.org/schemas/deposits/records/record-v1.0.0.json"

// Metadata is the validated payload of a deposit record. It is constructed
// from untrusted JSON on each write and fully revalidated; it owns its
// nested values by composition.
type Metadata struct {
	// schema-version tag, set during normalization
	Schema string `json:"$schema,omitempty"`
	// DOI in canonical form, or empty if none has been assigned
	DOI string `json:"doi,omitempty"`
	// publication date (YYYY-MM-DD); defaults to the current UTC date
	PublicationDate string `json:"publication_date,omitempty"`
	Title           string `json:"title,omitempty"`
	// the record's creators (at least one required)
	Creators []Person `json:"creators,omitempty"`
	// lifecycle date intervals
	Dates []DateInterval `json:"dates,omitempty"`
	// localized description, keyed by language
	Description map[string]string `json:"description,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	Subjects    []string          `json:"subjects,omitempty"`
	Locations   []GeoLocation     `json:"locations,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	Version     string            `json:"version,omitempty"`
	// ISO 639-3 language code
	Language    string                  `json:"language,omitempty"`
	AccessRight accessright.AccessRight `json:"access_right,omitempty"`
	// embargo lift date; only present while the access right is embargoed
	EmbargoDate string `json:"embargo_date,omitempty"`
	// conditions under which access can be requested; only present while
	// the access right is restricted
	AccessConditions string `json:"access_conditions,omitempty"`
	// license, either inline metadata or a reference pointer
	License json.RawMessage `json:"license,omitempty"`
	// grants, each either inline metadata or a reference pointer
	Grants               []json.RawMessage     `json:"grants,omitempty"`
	Contributors         []Contributor         `json:"contributors,omitempty"`
	References           []Reference           `json:"references,omitempty"`
	RelatedIdentifiers   []RelatedIdentifier   `json:"related_identifiers,omitempty"`
	AlternateIdentifiers []AlternateIdentifier `json:"alternate_identifiers,omitempty"`
	ResourceType         *ResourceType         `json:"resource_type,omitempty"`
	Journal              *Journal              `json:"journal,omitempty"`
	Imprint              *Imprint              `json:"imprint,omitempty"`
	PartOf               *PartOf               `json:"part_of,omitempty"`
	Thesis               *Thesis               `json:"thesis,omitempty"`
	Method               string                `json:"method,omitempty"`
}

// a creator or the person part of a contributor; empty optional identifier
// fields are pruned on load and on dump
type Person struct {
	Name        string `json:"name"`
	FamilyName  string `json:"familyname,omitempty"`
	GivenNames  string `json:"givennames,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
	GND         string `json:"gnd,omitempty"`
}

// a contributor: a person with a DataCite contributor type
type Contributor struct {
	Person
	Type string `json:"type"`
}

// a date interval in a record's lifecycle; at least one of start/end must be
// present, and start must not be after end
type DateInterval struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	// the nature of the event ("collected", "valid", "withdrawn", ...)
	Type        string            `json:"type"`
	Description map[string]string `json:"description,omitempty"`
}

// a geographical location; lat and lon must be both present or both absent
type GeoLocation struct {
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	Place       string   `json:"place"`
	Description string   `json:"description,omitempty"`
}

// a persistent identifier with an optional declared scheme; the scheme is
// inferred from the value when absent
type Identifier struct {
	Identifier   string        `json:"identifier"`
	Scheme       string        `json:"scheme,omitempty"`
	ResourceType *ResourceType `json:"resource_type,omitempty"`
}

// an identifier related to this record through a relation from the
// relation-type vocabulary
type RelatedIdentifier struct {
	Identifier
	Relation string `json:"relation"`
}

// an alternate identifier for this record itself
type AlternateIdentifier struct {
	Identifier
}

// a raw bibliographic reference string, wrapped during normalization
type Reference struct {
	RawReference string `json:"raw_reference"`
}

// UnmarshalJSON accepts either a bare reference string or the wrapped form,
// so an already-normalized document loads unchanged.
func (r *Reference) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		r.RawReference = raw
		return nil
	}
	var wrapped struct {
		RawReference string `json:"raw_reference"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("Not a valid reference.")
	}
	r.RawReference = wrapped.RawReference
	return nil
}

// a journal article's venue
type Journal struct {
	Issue  string            `json:"issue,omitempty"`
	Pages  string            `json:"pages,omitempty"`
	Title  map[string]string `json:"title,omitempty"`
	Volume string            `json:"volume,omitempty"`
	Year   string            `json:"year,omitempty"`
}

// imprint information for books and reports
type Imprint struct {
	Publisher string `json:"publisher,omitempty"`
	Place     string `json:"place,omitempty"`
	ISBN      string `json:"isbn,omitempty"`
}

// the larger publication a book section belongs to
type PartOf struct {
	Pages string            `json:"pages,omitempty"`
	Title map[string]string `json:"title,omitempty"`
}

// thesis information
type Thesis struct {
	University  string   `json:"university,omitempty"`
	Supervisors []Person `json:"supervisors,omitempty"`
}
