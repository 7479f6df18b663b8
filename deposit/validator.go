package deposit

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oarepo/depositd/accessright"
	"github.com/oarepo/depositd/identifiers"
	"github.com/oarepo/depositd/pidstore"
	"github.com/oarepo/depositd/vocabularies"
)

// Validator checks inbound deposit metadata against the business rules and
// normalizes it. All configuration is explicit: vocabularies and the DOI
// policy are fixed at construction, and per-request behavior comes in
// through Options. A Validator is safe for concurrent use.
type Validator struct {
	// controlled vocabularies
	ContributorTypes *vocabularies.ContributorTypes
	RelationTypes    *vocabularies.RelationTypes
	Languages        *vocabularies.Languages
	// rules for client-supplied DOIs
	DOI DOIPolicy
	// PID store for DOI ownership checks; nil skips them
	Store pidstore.Store
	// resolver for license/grant reference pointers; consulted only when
	// Options.ResolveReferences is set
	References pidstore.ReferenceResolver
	// clock, overridable in tests
	Now func() time.Time
}

// Options carries the per-request validation context.
type Options struct {
	// recid PID value of the record being updated; empty for a record that
	// hasn't been created yet
	RecordID string
	// require a non-empty DOI
	DOIRequired bool
	// dereference license/grant reference pointers and fail when they
	// don't resolve; callers request this explicitly rather than the
	// validator inferring it from ambient state
	ResolveReferences bool
}

// NewValidator creates a validator with the default vocabularies and the
// given DOI policy.
func NewValidator(policy DOIPolicy) *Validator {
	return &Validator{
		ContributorTypes: vocabularies.DefaultContributorTypes(),
		RelationTypes:    vocabularies.DefaultRelationTypes(),
		Languages:        vocabularies.DefaultLanguages(),
		DOI:              policy,
	}
}

// the complete set of metadata field names accepted on input
var allowedKeys = map[string]struct{}{
	"$schema": {}, "doi": {}, "publication_date": {}, "title": {},
	"creators": {}, "dates": {}, "description": {}, "keywords": {},
	"subjects": {}, "locations": {}, "notes": {}, "version": {},
	"language": {}, "access_right": {}, "embargo_date": {},
	"access_conditions": {}, "license": {}, "grants": {},
	"contributors": {}, "references": {}, "related_identifiers": {},
	"alternate_identifiers": {}, "resource_type": {}, "journal": {},
	"imprint": {}, "part_of": {}, "thesis": {}, "method": {},
}

// allowed field names for the nested object shapes; unknown keys inside
// nested objects are rejected, not silently dropped
var personKeys = map[string]struct{}{
	"name": {}, "familyname": {}, "givennames": {}, "affiliation": {},
	"orcid": {}, "gnd": {},
}
var contributorKeys = map[string]struct{}{
	"name": {}, "familyname": {}, "givennames": {}, "affiliation": {},
	"orcid": {}, "gnd": {}, "type": {},
}
var dateKeys = map[string]struct{}{
	"start": {}, "end": {}, "type": {}, "description": {},
}
var locationKeys = map[string]struct{}{
	"lat": {}, "lon": {}, "place": {}, "description": {},
}
var identifierKeys = map[string]struct{}{
	"identifier": {}, "scheme": {}, "resource_type": {},
}
var relatedIdentifierKeys = map[string]struct{}{
	"identifier": {}, "scheme": {}, "resource_type": {}, "relation": {},
}
var resourceTypeKeys = map[string]struct{}{
	"type": {}, "subtype": {},
}
var referenceKeys = map[string]struct{}{
	"raw_reference": {},
}
var journalKeys = map[string]struct{}{
	"issue": {}, "pages": {}, "title": {}, "volume": {}, "year": {},
}
var imprintKeys = map[string]struct{}{
	"publisher": {}, "place": {}, "isbn": {},
}
var partOfKeys = map[string]struct{}{
	"pages": {}, "title": {},
}
var thesisKeys = map[string]struct{}{
	"university": {}, "supervisors": {},
}

// ValidateAndNormalize validates raw metadata JSON and returns the
// normalized metadata. On failure it returns a *ValidationErrors listing
// every failing field with its fully-qualified dotted path. Normalization is
// a fixed point: revalidating an already-normalized document reproduces it
// exactly.
func (v *Validator) ValidateAndNormalize(raw []byte, opts Options) (*Metadata, error) {
	errs := &ValidationErrors{}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		errs.Add("metadata", "Not a valid JSON object.")
		return nil, errs
	}

	// reject unknown fields before any field-level work, naming all of them
	checkUnknownKeys(doc, errs)
	if err := errs.OrNil(); err != nil {
		return nil, errs
	}

	v.preNormalize(doc)

	m, err := decodeMetadata(doc)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			errs.Add(typeErr.Field, fmt.Sprintf("Not a valid %s.", typeErr.Type.Kind()))
		} else {
			errs.Add("metadata", err.Error())
		}
		return nil, errs
	}

	v.validateFields(m, opts, errs)
	v.validateCrossField(m, doc, errs)
	if opts.ResolveReferences {
		v.resolveReferences(m, errs)
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	v.postNormalize(m)
	return m, nil
}

// checkUnknownKeys rejects field names outside the allow-lists, at the top
// level and inside every nested object shape, reporting each offender under
// its dotted path
func checkUnknownKeys(doc map[string]any, errs *ValidationErrors) {
	unknown := make([]string, 0)
	for key := range doc {
		if _, ok := allowedKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs.Add("metadata", fmt.Sprintf("Unknown field name: %s.", strings.Join(unknown, ", ")))
	}

	checkObjectListKeys(doc["creators"], "creators", personKeys, errs)
	checkObjectListKeys(doc["contributors"], "contributors", contributorKeys, errs)
	checkObjectListKeys(doc["dates"], "dates", dateKeys, errs)
	checkObjectListKeys(doc["locations"], "locations", locationKeys, errs)
	checkIdentifierListKeys(doc["related_identifiers"], "related_identifiers", relatedIdentifierKeys, errs)
	checkIdentifierListKeys(doc["alternate_identifiers"], "alternate_identifiers", identifierKeys, errs)
	// references may be bare strings or wrapped objects
	checkObjectListKeys(doc["references"], "references", referenceKeys, errs)
	checkObjectKeys(doc["resource_type"], "resource_type", resourceTypeKeys, errs)
	checkObjectKeys(doc["journal"], "journal", journalKeys, errs)
	checkObjectKeys(doc["imprint"], "imprint", imprintKeys, errs)
	checkObjectKeys(doc["part_of"], "part_of", partOfKeys, errs)
	checkObjectKeys(doc["thesis"], "thesis", thesisKeys, errs)
	if thesis, ok := doc["thesis"].(map[string]any); ok {
		checkObjectListKeys(thesis["supervisors"], "thesis.supervisors", personKeys, errs)
	}
}

// values that are not objects (or not lists) are left for the decoder to
// report as type errors
func checkObjectKeys(value any, path string, allowed map[string]struct{}, errs *ValidationErrors) {
	obj, ok := value.(map[string]any)
	if !ok {
		return
	}
	unknown := make([]string, 0)
	for key := range obj {
		if _, ok := allowed[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		errs.Add(path, fmt.Sprintf("Unknown field name: %s.", strings.Join(unknown, ", ")))
	}
}

func checkObjectListKeys(value any, path string, allowed map[string]struct{}, errs *ValidationErrors) {
	list, ok := value.([]any)
	if !ok {
		return
	}
	for i, entry := range list {
		checkObjectKeys(entry, fmt.Sprintf("%s.%d", path, i), allowed, errs)
	}
}

func checkIdentifierListKeys(value any, path string, allowed map[string]struct{}, errs *ValidationErrors) {
	list, ok := value.([]any)
	if !ok {
		return
	}
	for i, entry := range list {
		entryPath := fmt.Sprintf("%s.%d", path, i)
		checkObjectKeys(entry, entryPath, allowed, errs)
		if obj, ok := entry.(map[string]any); ok {
			checkObjectKeys(obj["resource_type"], entryPath+".resource_type", resourceTypeKeys, errs)
		}
	}
}

// defaulting and dependent-field stripping performed before any field-level
// validation
func (v *Validator) preNormalize(doc map[string]any) {
	if _, ok := doc["access_right"]; !ok {
		doc["access_right"] = string(accessright.Open)
	}
	acc, _ := doc["access_right"].(string)
	right := accessright.AccessRight(acc)
	if right != accessright.Open && right != accessright.Embargoed {
		delete(doc, "license")
	}
	if right != accessright.Restricted {
		delete(doc, "access_conditions")
	}
	if right != accessright.Embargoed {
		delete(doc, "embargo_date")
	}
	if _, ok := doc["publication_date"]; !ok {
		doc["publication_date"] = v.now().Format("2006-01-02")
	}
}

func decodeMetadata(doc map[string]any) (*Metadata, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (v *Validator) validateFields(m *Metadata, opts Options, errs *ValidationErrors) {
	v.validateDOI(m, opts, errs)

	m.Title = sanitize(m.Title)
	if m.Title == "" {
		errs.Add("title", "Missing data for required field.")
	} else if utf8.RuneCountInString(m.Title) < 3 {
		errs.Add("title", "Shorter than minimum length 3.")
	}

	if m.PublicationDate == "" {
		errs.Add("publication_date", "Missing data for required field.")
	} else if _, err := parseDate(m.PublicationDate); err != nil {
		errs.Add("publication_date", "Not a valid date.")
	}

	if len(m.Description) == 0 {
		errs.Add("description", "Missing data for required field.")
	}
	for lang, text := range m.Description {
		text = sanitize(text)
		m.Description[lang] = text
		if utf8.RuneCountInString(text) < 3 {
			errs.Add("description."+lang, "Shorter than minimum length 3.")
		}
	}

	if len(m.Creators) == 0 {
		errs.Add("creators", "Shorter than minimum length 1.")
	}
	for i := range m.Creators {
		v.validatePerson(&m.Creators[i], fmt.Sprintf("creators.%d", i), errs)
	}

	v.validateDates(m, errs)
	v.validateLocations(m, errs)

	if !m.AccessRight.IsValid() {
		errs.Add("access_right", "Must be one of: open, embargoed, restricted, closed.")
	}
	if m.EmbargoDate != "" {
		if _, err := parseDate(m.EmbargoDate); err != nil {
			errs.Add("embargo_date", "Not a valid date.")
		}
	}

	m.Language = sanitize(m.Language)
	if m.Language != "" && !v.Languages.Contains(m.Language) {
		errs.Add("language", "Language must be a lower-cased 3-letter ISO 639-3 string.")
	}

	for i := range m.Contributors {
		path := fmt.Sprintf("contributors.%d", i)
		c := &m.Contributors[i]
		v.validatePerson(&c.Person, path, errs)
		if c.Type == "" {
			errs.Add(path+".type", "Missing data for required field.")
		} else if !v.ContributorTypes.Contains(c.Type) {
			errs.Add(path+".type", "Invalid contributor type.")
		}
	}

	for i := range m.RelatedIdentifiers {
		path := fmt.Sprintf("related_identifiers.%d", i)
		rel := &m.RelatedIdentifiers[i]
		v.validateIdentifier(&rel.Identifier, path, errs)
		if rel.Relation == "" {
			errs.Add(path+".relation", "Missing data for required field.")
		} else if !v.RelationTypes.Contains(rel.Relation) {
			errs.Add(path+".relation", "Not a valid relation.")
		}
	}
	for i := range m.AlternateIdentifiers {
		v.validateIdentifier(&m.AlternateIdentifiers[i].Identifier,
			fmt.Sprintf("alternate_identifiers.%d", i), errs)
	}
}

func (v *Validator) validateDOI(m *Metadata, opts Options, errs *ValidationErrors) {
	normalized, err := v.DOI.Validate(m.DOI, !opts.DOIRequired)
	if err != nil {
		errs.AddError("doi", err)
		return
	}
	m.DOI = normalized
	if err := v.DOI.CheckOwnership(v.Store, m.DOI, opts.RecordID); err != nil {
		errs.AddError("doi", err)
	}
}

func (v *Validator) validatePerson(p *Person, path string, errs *ValidationErrors) {
	p.Name = sanitize(p.Name)
	p.FamilyName = sanitize(p.FamilyName)
	p.GivenNames = sanitize(p.GivenNames)
	p.Affiliation = sanitize(p.Affiliation)

	if p.Name == "" {
		errs.Add(path+".name", "Name is required.")
	}
	if orcid := sanitize(p.ORCID); orcid != "" {
		normalized, _, err := identifiers.Validate(orcid, "ORCID")
		if err != nil {
			errs.AddError(path+".orcid", err)
		} else {
			p.ORCID = normalized
		}
	} else {
		p.ORCID = ""
	}
	if gnd := sanitize(p.GND); gnd != "" {
		normalized, _, err := identifiers.Validate(gnd, "GND")
		if err != nil {
			errs.AddError(path+".gnd", err)
		} else {
			// normalization adds the gnd: prefix, which the stored form
			// doesn't carry
			p.GND = strings.TrimPrefix(normalized, "gnd:")
		}
	} else {
		p.GND = ""
	}
}

func (v *Validator) validateIdentifier(id *Identifier, path string, errs *ValidationErrors) {
	id.Identifier = sanitize(id.Identifier)
	if id.Identifier == "" {
		errs.Add(path+".identifier", "Identifier is required.")
		return
	}
	normalized, scheme, err := identifiers.Validate(id.Identifier, id.Scheme)
	if err != nil {
		errs.AddError(path+".identifier", err)
		return
	}
	id.Identifier = normalized
	id.Scheme = scheme
}

func (v *Validator) validateDates(m *Metadata, errs *ValidationErrors) {
	if m.Dates != nil && len(m.Dates) == 0 {
		errs.Add("dates", "Shorter than minimum length 1.")
	}
	for i := range m.Dates {
		path := fmt.Sprintf("dates.%d", i)
		d := &m.Dates[i]
		if d.Type == "" {
			errs.Add(path+".type", "Missing data for required field.")
		}

		var start, end time.Time
		var startErr, endErr error
		if d.Start != "" {
			start, startErr = parseDate(d.Start)
			if startErr != nil {
				errs.Add(path+".start", "Not a valid date.")
			}
		}
		if d.End != "" {
			end, endErr = parseDate(d.End)
			if endErr != nil {
				errs.Add(path+".end", "Not a valid date.")
			}
		}
		if d.Start == "" && d.End == "" {
			errs.Add(path, "There must be at least one date.")
		}
		if d.Start != "" && d.End != "" && startErr == nil && endErr == nil &&
			start.After(end) {
			errs.Add(path, `"start" date must be before "end" date.`)
		}
	}
}

func (v *Validator) validateLocations(m *Metadata, errs *ValidationErrors) {
	for i := range m.Locations {
		path := fmt.Sprintf("locations.%d", i)
		l := &m.Locations[i]
		l.Place = sanitize(l.Place)
		l.Description = sanitize(l.Description)
		if l.Place == "" {
			errs.Add(path+".place", "Missing data for required field.")
		}
		if l.Lat != nil && (*l.Lat < -90 || *l.Lat > 90) {
			errs.Add(path+".lat", "Latitude must be between -90 and 90.")
		}
		if l.Lon != nil && (*l.Lon < -180 || *l.Lon > 180) {
			errs.Add(path+".lon", "Longitude must be between -180 and 180.")
		}
		if (l.Lat == nil) != (l.Lon == nil) {
			errs.Add(path, "There should be both latitude and longitude.")
		}
	}
}

// inter-field dependency rules, evaluated against field presence before
// normalization stripped anything. A rule is skipped when the field it
// depends on failed structurally; the rest of the pipeline still runs.
func (v *Validator) validateCrossField(m *Metadata, doc map[string]any, errs *ValidationErrors) {
	if m.AccessRight.IsValid() {
		_, hasLicense := doc["license"]
		_, hasEmbargoDate := doc["embargo_date"]
		_, hasConditions := doc["access_conditions"]

		acc := m.AccessRight
		if (acc == accessright.Open || acc == accessright.Embargoed) && !hasLicense {
			errs.Add("license", "Required when access right is open or embargoed.")
		}
		if acc == accessright.Embargoed && !hasEmbargoDate {
			errs.Add("embargo_date", "Required when access right is embargoed.")
		}
		if acc == accessright.Restricted && !hasConditions {
			errs.Add("access_conditions", "Required when access right is restricted.")
		}
	}

	if m.EmbargoDate != "" {
		if date, err := parseDate(m.EmbargoDate); err == nil {
			if !accessright.IsEmbargoed(date, v.now()) {
				errs.Add("embargo_date", "Embargo date must be in the future.")
			}
		}
	}
}

// dereferences license and grant reference pointers, failing validation for
// any pointer that doesn't resolve
func (v *Validator) resolveReferences(m *Metadata, errs *ValidationErrors) {
	if v.References == nil {
		return
	}
	if ref, ok := refPointer(m.License); ok {
		if _, err := v.References.Dereference(ref); err != nil {
			errs.AddError("license", &UnresolvableReferenceError{Field: "license"})
		}
	}
	for i, grant := range m.Grants {
		if ref, ok := refPointer(grant); ok {
			if _, err := v.References.Dereference(ref); err != nil {
				errs.AddError(fmt.Sprintf("grants.%d", i),
					&UnresolvableReferenceError{Field: "grants"})
			}
		}
	}
}

// cleanup performed after all validation has passed
func (v *Validator) postNormalize(m *Metadata) {
	m.Schema = SchemaURL
	m.Notes = sanitize(m.Notes)
	m.Version = sanitize(m.Version)
	m.Method = sanitize(m.Method)
	m.AccessConditions = sanitize(m.AccessConditions)

	if m.Keywords != nil {
		keywords := make([]string, 0, len(m.Keywords))
		for _, kw := range m.Keywords {
			kw = sanitize(kw)
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		m.Keywords = keywords
	}
	for i, subject := range m.Subjects {
		m.Subjects[i] = sanitize(subject)
	}
	if m.References != nil {
		references := make([]Reference, 0, len(m.References))
		for _, ref := range m.References {
			raw := sanitize(ref.RawReference)
			if raw != "" {
				references = append(references, Reference{RawReference: raw})
			}
		}
		m.References = references
	}
}

// refPointer extracts the target of a reference pointer document
// ({"$ref": ...}); inline values are not pointers
func refPointer(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", false
	}
	ref, ok := obj["$ref"].(string)
	return ref, ok && ref != ""
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now().UTC()
	}
	return time.Now().UTC()
}

func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, time.UTC)
}

// trims whitespace and strips non-printable runes
func sanitize(value string) string {
	value = strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(value)
}
