package deposit

// These tests verify the metadata validation and normalization pipeline.

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oarepo/depositd/pidstore"
)

// a fixed clock for reproducible date handling
var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

// a minimal valid metadata document
const MINIMAL_METADATA string = `{
	"title": "Test record",
	"description": {"en": "A test record."},
	"creators": [{"name": "Doe, John"}],
	"license": {"id": "CC-BY-4.0"}
}`

func testValidator() *Validator {
	v := NewValidator(DOIPolicy{})
	v.Now = func() time.Time { return testNow }
	return v
}

// returns the messages recorded for a field path, or nil
func messagesFor(err error, field string) []string {
	verrs, ok := err.(*ValidationErrors)
	if !ok {
		return nil
	}
	var messages []string
	for _, fieldErr := range verrs.Errors {
		if fieldErr.Field == field {
			messages = append(messages, fieldErr.Message)
		}
	}
	return messages
}

// tests whether a minimal valid document passes and picks up its defaults
func TestValidateMinimalDocument(t *testing.T) {
	assert := assert.New(t)

	m, err := testValidator().ValidateAndNormalize([]byte(MINIMAL_METADATA), Options{})
	assert.Nil(err, "Minimal valid metadata didn't validate.")
	assert.Equal(SchemaURL, m.Schema, "Schema URL wasn't stamped onto the document.")
	assert.Equal("open", string(m.AccessRight), "Access right didn't default to open.")
	assert.Equal("2026-08-29", m.PublicationDate,
		"Publication date didn't default to the current date.")
}

// tests whether malformed JSON is rejected with a single structural error
func TestValidateRejectsMalformedJSON(t *testing.T) {
	assert := assert.New(t)

	_, err := testValidator().ValidateAndNormalize([]byte(`[1, 2, 3]`), Options{})
	assert.NotNil(err)
	assert.Equal([]string{"Not a valid JSON object."}, messagesFor(err, "metadata"))
}

// tests whether unknown fields are rejected before any field-level work,
// with all of them named in one error
func TestValidateRejectsUnknownFields(t *testing.T) {
	assert := assert.New(t)

	doc := `{"title": "x", "foo": 1, "bar": 2}`
	_, err := testValidator().ValidateAndNormalize([]byte(doc), Options{})
	assert.NotNil(err)
	verrs := err.(*ValidationErrors)
	assert.Equal(1, len(verrs.Errors), "Unknown fields didn't short-circuit validation.")
	assert.Equal("metadata", verrs.Errors[0].Field)
	assert.Equal("Unknown field name: bar, foo.", verrs.Errors[0].Message)
}

// tests whether unknown keys inside nested objects are rejected instead of
// being silently dropped
func TestValidateRejectsUnknownNestedFields(t *testing.T) {
	assert := assert.New(t)

	doc := `{
		"title": "Test record",
		"creators": [{"name": "Doe, John", "email": "secret@example.org"}]
	}`
	_, err := testValidator().ValidateAndNormalize([]byte(doc), Options{})
	assert.NotNil(err)
	assert.Equal([]string{"Unknown field name: email."}, messagesFor(err, "creators.0"))

	doc = `{
		"title": "Test record",
		"creators": [{"name": "Doe, John"}],
		"thesis": {"supervisors": [{"name": "Smith, Jane", "role": "advisor"}]},
		"related_identifiers": [{
			"identifier": "10.1234/foo",
			"relation": "cites",
			"resource_type": {"type": "publication", "openaire_type": "article"}
		}]
	}`
	_, err = testValidator().ValidateAndNormalize([]byte(doc), Options{})
	assert.NotNil(err)
	assert.Equal([]string{"Unknown field name: role."}, messagesFor(err, "thesis.supervisors.0"))
	assert.Equal([]string{"Unknown field name: openaire_type."},
		messagesFor(err, "related_identifiers.0.resource_type"))
}

// tests whether a field of the wrong JSON type is reported by its path
func TestValidateRejectsWrongType(t *testing.T) {
	assert := assert.New(t)

	doc := `{"title": 42, "description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}], "license": "cc-by"}`
	_, err := testValidator().ValidateAndNormalize([]byte(doc), Options{})
	assert.NotNil(err)
	assert.Equal([]string{"Not a valid string."}, messagesFor(err, "title"))
}

// tests whether all field-level failures are accumulated in one pass
func TestValidateAccumulatesErrors(t *testing.T) {
	assert := assert.New(t)

	doc := `{"title": "ab", "creators": []}`
	_, err := testValidator().ValidateAndNormalize([]byte(doc), Options{})
	assert.NotNil(err)
	assert.Equal([]string{"Shorter than minimum length 3."}, messagesFor(err, "title"))
	assert.Equal([]string{"Missing data for required field."}, messagesFor(err, "description"))
	assert.Equal([]string{"Shorter than minimum length 1."}, messagesFor(err, "creators"))
	assert.Equal([]string{"Required when access right is open or embargoed."},
		messagesFor(err, "license"))
}

// tests the cross-field requirements for each access right
func TestValidateAccessRightRequirements(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	base := `"title": "Test record", "description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}]`

	// open records need a license
	doc := fmt.Sprintf(`{%s, "access_right": "open"}`, base)
	_, err := v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Equal([]string{"Required when access right is open or embargoed."},
		messagesFor(err, "license"))

	// embargoed records need a license and an embargo date
	doc = fmt.Sprintf(`{%s, "access_right": "embargoed"}`, base)
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Equal([]string{"Required when access right is open or embargoed."},
		messagesFor(err, "license"))
	assert.Equal([]string{"Required when access right is embargoed."},
		messagesFor(err, "embargo_date"))

	// restricted records need access conditions and no license
	doc = fmt.Sprintf(`{%s, "access_right": "restricted"}`, base)
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Equal([]string{"Required when access right is restricted."},
		messagesFor(err, "access_conditions"))

	doc = fmt.Sprintf(`{%s, "access_right": "restricted",
		"access_conditions": "Ask nicely.", "license": {"id": "CC-BY-4.0"}}`, base)
	m, err := v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "Valid restricted record didn't validate.")
	assert.Empty(m.License, "License wasn't stripped from a restricted record.")

	// closed records need nothing extra
	doc = fmt.Sprintf(`{%s, "access_right": "closed"}`, base)
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "Valid closed record didn't validate.")

	// an unknown access right is reported without cross-field noise
	doc = fmt.Sprintf(`{%s, "access_right": "public"}`, base)
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Equal([]string{"Must be one of: open, embargoed, restricted, closed."},
		messagesFor(err, "access_right"))
	assert.Nil(messagesFor(err, "license"))
}

// tests whether the embargo date must lie strictly in the future, at
// calendar-date granularity
func TestValidateEmbargoDate(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	doc := func(date string) []byte {
		return []byte(fmt.Sprintf(`{"title": "Test record",
			"description": {"en": "A test record."},
			"creators": [{"name": "Doe, John"}],
			"license": {"id": "CC-BY-4.0"},
			"access_right": "embargoed", "embargo_date": %q}`, date))
	}

	_, err := v.ValidateAndNormalize(doc("2030-01-01"), Options{})
	assert.Nil(err, "Future embargo date didn't validate.")

	_, err = v.ValidateAndNormalize(doc("2020-01-01"), Options{})
	assert.Equal([]string{"Embargo date must be in the future."},
		messagesFor(err, "embargo_date"))

	// today doesn't count as the future
	_, err = v.ValidateAndNormalize(doc("2026-08-29"), Options{})
	assert.Equal([]string{"Embargo date must be in the future."},
		messagesFor(err, "embargo_date"))

	_, err = v.ValidateAndNormalize(doc("not-a-date"), Options{})
	assert.Equal([]string{"Not a valid date."}, messagesFor(err, "embargo_date"))
}

// tests whether an embargo date on a non-embargoed record is dropped rather
// than rejected
func TestValidateStripsStrayEmbargoDate(t *testing.T) {
	assert := assert.New(t)

	doc := `{"title": "Test record", "description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}], "license": {"id": "CC-BY-4.0"},
		"access_right": "open", "embargo_date": "2020-01-01"}`
	m, err := testValidator().ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "Open record with a stray embargo date didn't validate.")
	assert.Equal("", m.EmbargoDate, "Stray embargo date wasn't stripped.")
}

// tests the date interval rules
func TestValidateDates(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	doc := func(dates string) []byte {
		return []byte(fmt.Sprintf(`{"title": "Test record",
			"description": {"en": "A test record."},
			"creators": [{"name": "Doe, John"}],
			"license": {"id": "CC-BY-4.0"}, "dates": %s}`, dates))
	}

	_, err := v.ValidateAndNormalize(
		doc(`[{"start": "2020-01-01", "end": "2020-06-01", "type": "collected"}]`),
		Options{})
	assert.Nil(err, "Valid date interval didn't validate.")

	_, err = v.ValidateAndNormalize(
		doc(`[{"start": "2020-06-01", "end": "2020-01-01", "type": "collected"}]`),
		Options{})
	assert.Equal([]string{`"start" date must be before "end" date.`},
		messagesFor(err, "dates.0"))

	_, err = v.ValidateAndNormalize(doc(`[{"type": "collected"}]`), Options{})
	assert.Equal([]string{"There must be at least one date."},
		messagesFor(err, "dates.0"))

	_, err = v.ValidateAndNormalize(doc(`[{"start": "2020-01-01"}]`), Options{})
	assert.Equal([]string{"Missing data for required field."},
		messagesFor(err, "dates.0.type"))

	_, err = v.ValidateAndNormalize(
		doc(`[{"start": "01/02/2020", "type": "collected"}]`), Options{})
	assert.Equal([]string{"Not a valid date."}, messagesFor(err, "dates.0.start"))
}

// tests the geolocation rules
func TestValidateLocations(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	doc := func(locations string) []byte {
		return []byte(fmt.Sprintf(`{"title": "Test record",
			"description": {"en": "A test record."},
			"creators": [{"name": "Doe, John"}],
			"license": {"id": "CC-BY-4.0"}, "locations": %s}`, locations))
	}

	_, err := v.ValidateAndNormalize(
		doc(`[{"lat": 45, "lon": 90, "place": "Somewhere"}]`), Options{})
	assert.Nil(err, "Valid location didn't validate.")

	_, err = v.ValidateAndNormalize(
		doc(`[{"lat": 95, "lon": 10, "place": "Somewhere"}]`), Options{})
	assert.Equal([]string{"Latitude must be between -90 and 90."},
		messagesFor(err, "locations.0.lat"))

	_, err = v.ValidateAndNormalize(
		doc(`[{"lat": 10, "place": "Somewhere"}]`), Options{})
	assert.Equal([]string{"There should be both latitude and longitude."},
		messagesFor(err, "locations.0"))

	_, err = v.ValidateAndNormalize(doc(`[{"lat": 10, "lon": 10}]`), Options{})
	assert.Equal([]string{"Missing data for required field."},
		messagesFor(err, "locations.0.place"))
}

// tests creator and contributor identifier handling
func TestValidatePersons(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	doc := `{"title": "Test record", "description": {"en": "A test record."},
		"license": {"id": "CC-BY-4.0"},
		"creators": [{"name": "Carberry, Josiah",
			"orcid": "https://orcid.org/0000-0002-1825-0097",
			"gnd": "https://d-nb.info/gnd/4079154-3"}]}`
	m, err := v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "Creator with valid identifiers didn't validate.")
	assert.Equal("0000-0002-1825-0097", m.Creators[0].ORCID,
		"ORCID wasn't normalized.")
	assert.Equal("4079154-3", m.Creators[0].GND,
		"GND number wasn't stored without its scheme prefix.")

	doc = `{"title": "Test record", "description": {"en": "A test record."},
		"license": {"id": "CC-BY-4.0"},
		"creators": [{"name": "Doe, John", "orcid": "0000-0002-1825-0098"}]}`
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Equal([]string{"Not a valid persistent identifier."},
		messagesFor(err, "creators.0.orcid"))

	doc = `{"title": "Test record", "description": {"en": "A test record."},
		"license": {"id": "CC-BY-4.0"}, "creators": [{"name": ""}]}`
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Equal([]string{"Name is required."}, messagesFor(err, "creators.0.name"))
}

// tests contributor type validation
func TestValidateContributors(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	doc := func(contributors string) []byte {
		return []byte(fmt.Sprintf(`{"title": "Test record",
			"description": {"en": "A test record."},
			"creators": [{"name": "Doe, John"}],
			"license": {"id": "CC-BY-4.0"}, "contributors": %s}`, contributors))
	}

	_, err := v.ValidateAndNormalize(
		doc(`[{"name": "Roe, Jane", "type": "Editor"}]`), Options{})
	assert.Nil(err, "Valid contributor didn't validate.")

	_, err = v.ValidateAndNormalize(
		doc(`[{"name": "Roe, Jane", "type": "Dancer"}]`), Options{})
	assert.Equal([]string{"Invalid contributor type."},
		messagesFor(err, "contributors.0.type"))

	_, err = v.ValidateAndNormalize(doc(`[{"name": "Roe, Jane"}]`), Options{})
	assert.Equal([]string{"Missing data for required field."},
		messagesFor(err, "contributors.0.type"))
}

// tests related and alternate identifier validation
func TestValidateRelatedIdentifiers(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	doc := `{"title": "Test record", "description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}], "license": {"id": "CC-BY-4.0"},
		"related_identifiers": [
			{"identifier": "https://doi.org/10.5281/zenodo.1234", "relation": "isCitedBy"}],
		"alternate_identifiers": [{"identifier": "2049-3630"}]}`
	m, err := v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "Valid related identifiers didn't validate.")
	assert.Equal("10.5281/zenodo.1234", m.RelatedIdentifiers[0].Identifier.Identifier)
	assert.Equal("doi", m.RelatedIdentifiers[0].Scheme,
		"Scheme wasn't inferred from the identifier.")
	assert.Equal("issn", m.AlternateIdentifiers[0].Scheme)

	doc = `{"title": "Test record", "description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}], "license": {"id": "CC-BY-4.0"},
		"related_identifiers": [
			{"identifier": "10.5281/zenodo.1234", "relation": "wibble"},
			{"identifier": "10.5281/zenodo.1234"}]}`
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Equal([]string{"Not a valid relation."},
		messagesFor(err, "related_identifiers.0.relation"))
	assert.Equal([]string{"Missing data for required field."},
		messagesFor(err, "related_identifiers.1.relation"))
}

// tests the text cleanup performed during normalization
func TestNormalizationCleanup(t *testing.T) {
	assert := assert.New(t)

	doc := `{"title": "  Test record\u0000  ",
		"description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}], "license": {"id": "CC-BY-4.0"},
		"keywords": ["  go  ", "", "storage"],
		"references": ["Doe (2020). A paper.", "  "]}`
	m, err := testValidator().ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "Document needing cleanup didn't validate.")
	assert.Equal("Test record", m.Title, "Title wasn't sanitized.")
	assert.Equal([]string{"go", "storage"}, m.Keywords,
		"Blank keywords weren't filtered out.")
	assert.Equal([]Reference{{RawReference: "Doe (2020). A paper."}}, m.References,
		"References weren't wrapped and filtered.")
}

// tests that normalization is a fixed point: revalidating an
// already-normalized document reproduces it byte for byte
func TestNormalizationIsIdempotent(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	doc := `{"title": "Test record", "description": {"en": "A test record."},
		"creators": [{"name": "Carberry, Josiah",
			"orcid": "https://orcid.org/0000-0002-1825-0097"}],
		"license": {"id": "CC-BY-4.0"},
		"keywords": [" go ", ""],
		"references": ["Doe (2020). A paper."],
		"related_identifiers": [{"identifier": "doi:10.5281/zenodo.1234",
			"relation": "cites"}],
		"resource_type": "publication-article"}`

	m1, err := v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "First validation pass failed.")
	out1, err := json.Marshal(m1)
	assert.Nil(err)

	m2, err := v.ValidateAndNormalize(out1, Options{})
	assert.Nil(err, "Second validation pass failed.")
	out2, err := json.Marshal(m2)
	assert.Nil(err)

	assert.Equal(string(out1), string(out2),
		"Revalidating a normalized document changed it.")
}

// a reference resolver that knows a fixed set of targets
type fakeResolver struct {
	known map[string]map[string]any
}

func (r fakeResolver) Dereference(ref string) (map[string]any, error) {
	if doc, ok := r.known[ref]; ok {
		return doc, nil
	}
	return nil, &pidstore.ReferenceResolutionError{Ref: ref, Message: "unknown target"}
}

// tests reference-pointer resolution for licenses and grants
func TestValidateResolvesReferences(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()
	v.References = fakeResolver{known: map[string]map[string]any{
		"https://example.org/licenses/cc-by": {"id": "CC-BY-4.0"},
	}}

	doc := `{"title": "Test record", "description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}],
		"license": {"$ref": "https://example.org/licenses/cc-by"}}`
	_, err := v.ValidateAndNormalize([]byte(doc), Options{ResolveReferences: true})
	assert.Nil(err, "Resolvable license reference didn't validate.")

	// resolution is opt-in
	doc = `{"title": "Test record", "description": {"en": "A test record."},
		"creators": [{"name": "Doe, John"}],
		"license": {"$ref": "https://example.org/licenses/nope"},
		"grants": [{"$ref": "https://example.org/grants/nope"}]}`
	_, err = v.ValidateAndNormalize([]byte(doc), Options{})
	assert.Nil(err, "References were resolved without being requested.")

	_, err = v.ValidateAndNormalize([]byte(doc), Options{ResolveReferences: true})
	assert.Equal([]string{"Invalid choice."}, messagesFor(err, "license"))
	assert.Equal([]string{"Invalid grant."}, messagesFor(err, "grants.0"))
}

// tests whether a DOI can be required per request
func TestValidateRequiredDOI(t *testing.T) {
	assert := assert.New(t)
	v := testValidator()

	_, err := v.ValidateAndNormalize([]byte(MINIMAL_METADATA), Options{DOIRequired: true})
	assert.Equal(
		[]string{"The provided DOI is invalid - it should look similar to '10.1234/foo.bar'."},
		messagesFor(err, "doi"))
}
