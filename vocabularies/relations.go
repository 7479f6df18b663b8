package vocabularies

// a relation type for related identifiers, with its display label
type RelationType struct {
	Name  string
	Label string
}

// relation types between a record and a related identifier, following the
// DataCite relationType vocabulary
var defaultRelationTypes = []RelationType{
	{Name: "isCitedBy", Label: "Cited by"},
	{Name: "cites", Label: "Cites"},
	{Name: "isSupplementTo", Label: "Supplement to"},
	{Name: "isSupplementedBy", Label: "Supplementary material"},
	{Name: "references", Label: "References"},
	{Name: "isReferencedBy", Label: "Referenced by"},
	{Name: "isNewVersionOf", Label: "Previous versions"},
	{Name: "isPreviousVersionOf", Label: "New versions"},
	{Name: "isContinuedBy", Label: "Continued by"},
	{Name: "continues", Label: "Continues"},
	{Name: "isPartOf", Label: "Part of"},
	{Name: "hasPart", Label: "Has part"},
	{Name: "isReviewedBy", Label: "Reviewed by"},
	{Name: "reviews", Label: "Reviews"},
	{Name: "isDocumentedBy", Label: "Documented by"},
	{Name: "documents", Label: "Documents"},
	{Name: "compiles", Label: "Compiles"},
	{Name: "isCompiledBy", Label: "Compiled by"},
	{Name: "isDerivedFrom", Label: "Derived from"},
	{Name: "isSourceOf", Label: "Source of"},
	{Name: "isIdenticalTo", Label: "Identical to"},
}

// This type holds a relation-type vocabulary. Read-only after construction.
type RelationTypes struct {
	types  []RelationType
	byName map[string]string
}

// NewRelationTypes builds a vocabulary from an explicit list of relation
// types.
func NewRelationTypes(types []RelationType) *RelationTypes {
	v := &RelationTypes{
		types:  make([]RelationType, len(types)),
		byName: make(map[string]string),
	}
	copy(v.types, types)
	for _, t := range types {
		v.byName[t.Name] = t.Label
	}
	return v
}

// DefaultRelationTypes returns the standard relation-type vocabulary.
func DefaultRelationTypes() *RelationTypes {
	return NewRelationTypes(defaultRelationTypes)
}

// Contains reports whether a relation name is in the vocabulary.
func (v *RelationTypes) Contains(name string) bool {
	_, ok := v.byName[name]
	return ok
}

// Label returns the display label for a relation name.
func (v *RelationTypes) Label(name string) string {
	return v.byName[name]
}

// Names returns the relation names in their configured order.
func (v *RelationTypes) Names() []string {
	names := make([]string, len(v.types))
	for i, t := range v.types {
		names[i] = t.Name
	}
	return names
}
