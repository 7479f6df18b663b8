package vocabularies

// Controlled vocabularies for deposit metadata. These are plain immutable
// values handed to the validator at construction time, not ambient globals.

// a contributor type with its display label and its MARC relator and
// DataCite contributorType codes
type ContributorType struct {
	Label    string
	MARC     string
	DataCite string
}

// the default allow list of contributor types with the DataCite<->MARC mapping
var defaultContributorTypes = []ContributorType{
	{Label: "Contact person", MARC: "prc", DataCite: "ContactPerson"},
	{Label: "Data collector", MARC: "col", DataCite: "DataCollector"},
	{Label: "Data curator", MARC: "cur", DataCite: "DataCurator"},
	{Label: "Data manager", MARC: "dtm", DataCite: "DataManager"},
	{Label: "Distributor", MARC: "dst", DataCite: "Distributor"},
	{Label: "Editor", MARC: "edt", DataCite: "Editor"},
	{Label: "Hosting institution", MARC: "his", DataCite: "HostingInstitution"},
	{Label: "Other", MARC: "oth", DataCite: "Other"},
	{Label: "Producer", MARC: "pro", DataCite: "Producer"},
	{Label: "Project leader", MARC: "pdr", DataCite: "ProjectLeader"},
	{Label: "Project manager", MARC: "rth", DataCite: "ProjectManager"},
	{Label: "Project member", MARC: "rtm", DataCite: "ProjectMember"},
	{Label: "Registration agency", MARC: "cor", DataCite: "RegistrationAgency"},
	{Label: "Registration authority", MARC: "cor", DataCite: "RegistrationAuthority"},
	{Label: "Related person", MARC: "oth", DataCite: "RelatedPerson"},
	{Label: "Research group", MARC: "rtm", DataCite: "ResearchGroup"},
	{Label: "Researcher", MARC: "res", DataCite: "Researcher"},
	{Label: "Rights holder", MARC: "cph", DataCite: "RightsHolder"},
	{Label: "Sponsor", MARC: "spn", DataCite: "Sponsor"},
	{Label: "Supervisor", MARC: "dgs", DataCite: "Supervisor"},
	{Label: "Work package leader", MARC: "led", DataCite: "WorkPackageLeader"},
}

// This type holds a contributor-type vocabulary with lookups in both
// directions. It is read-only after construction and safe for concurrent use.
type ContributorTypes struct {
	types           []ContributorType
	dataciteToMARC  map[string]string
	marcToDataCite  map[string]string
	dataciteToLabel map[string]string
}

// NewContributorTypes builds a vocabulary from an explicit list of types.
func NewContributorTypes(types []ContributorType) *ContributorTypes {
	v := &ContributorTypes{
		types:           make([]ContributorType, len(types)),
		dataciteToMARC:  make(map[string]string),
		marcToDataCite:  make(map[string]string),
		dataciteToLabel: make(map[string]string),
	}
	copy(v.types, types)
	for _, t := range types {
		v.dataciteToMARC[t.DataCite] = t.MARC
		v.dataciteToLabel[t.DataCite] = t.Label
		if _, taken := v.marcToDataCite[t.MARC]; !taken {
			v.marcToDataCite[t.MARC] = t.DataCite
		}
	}
	return v
}

// DefaultContributorTypes returns the standard contributor-type vocabulary.
func DefaultContributorTypes() *ContributorTypes {
	return NewContributorTypes(defaultContributorTypes)
}

// Contains reports whether a DataCite contributor-type code is in the
// vocabulary.
func (v *ContributorTypes) Contains(datacite string) bool {
	_, ok := v.dataciteToMARC[datacite]
	return ok
}

// MARC returns the MARC relator code for a DataCite contributor type.
func (v *ContributorTypes) MARC(datacite string) string {
	return v.dataciteToMARC[datacite]
}

// DataCite returns the DataCite code for a MARC relator code. Where several
// types share a MARC code, the first listed wins.
func (v *ContributorTypes) DataCite(marc string) string {
	return v.marcToDataCite[marc]
}

// Label returns the display label for a DataCite contributor type.
func (v *ContributorTypes) Label(datacite string) string {
	return v.dataciteToLabel[datacite]
}

// Types returns the vocabulary entries in their configured order.
func (v *ContributorTypes) Types() []ContributorType {
	types := make([]ContributorType, len(v.types))
	copy(types, v.types)
	return types
}
