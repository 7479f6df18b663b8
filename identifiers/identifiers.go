package identifiers

// This package detects and normalizes persistent identifiers (DOIs, ORCIDs,
// ISBNs, GND numbers, and so on) from their lexical form. Detection order is
// significant: the first detected scheme is the default scheme for an
// identifier that doesn't declare one.

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// a scheme pairs a name with the pattern that recognizes its identifiers and
// a function that produces the canonical string form
type scheme struct {
	name      string
	pattern   *regexp.Regexp
	normalize func(matches []string) string
	validate  func(matches []string) bool // nil means the pattern suffices
}

var doiPattern = regexp.MustCompile(`^(?:doi:\s*|(?:https?://)?(?:dx\.)?doi\.org/)?(10\.\d{4,9}(?:\.\d+)*/\S+)$`)
var handlePattern = regexp.MustCompile(`^(?:hdl:\s*|(?:https?://)?hdl\.handle\.net/)?([0-9.]+/\S+)$`)
var adsPattern = regexp.MustCompile(`^(?:ads:)?(\d{4}[A-Za-z][0-9A-Za-z.&]{13}[A-Z.:])$`)
var arxivPattern = regexp.MustCompile(`^(?:arxiv:|arXiv:)?(\d{4}\.\d{4,5}(?:v\d+)?|[a-z-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)$`)
var orcidPattern = regexp.MustCompile(`^(?:(?:https?://)?orcid\.org/)?(\d{4})-?(\d{4})-?(\d{4})-?(\d{3}[0-9X])$`)
var isbnPattern = regexp.MustCompile(`^(?:isbn:?\s*)?([0-9][0-9- ]{8,16}[0-9Xx])$`)
var issnPattern = regexp.MustCompile(`^(?:issn:?\s*)?(\d{4})-?(\d{3}[\dXx])$`)
var gndPattern = regexp.MustCompile(`^(?:gnd:|GND:|(?:https?://)?d-nb\.info/gnd/)?(1[0123]?\d{7}[0-9X]|[47]\d{6}-\d|[1-9]\d{0,7}-[0-9X]|3\d{7}[0-9X])$`)
var pmidPattern = regexp.MustCompile(`^(?:pmid:)?(\d{4,10})$`)
var urnPattern = regexp.MustCompile(`^(urn:[a-z0-9][a-z0-9-]{0,31}:\S+)$`)
var urlPattern = regexp.MustCompile(`^(https?://\S+|ftp://\S+)$`)

// schemes in detection order: the first matching scheme wins when no scheme
// is declared, so the more specific patterns come first
var schemes = []scheme{
	{name: "doi", pattern: doiPattern, normalize: first},
	{name: "handle", pattern: handlePattern, normalize: first},
	{name: "ads", pattern: adsPattern, normalize: func(m []string) string {
		return "ads:" + m[1]
	}},
	{name: "arxiv", pattern: arxivPattern, normalize: func(m []string) string {
		return "arXiv:" + m[1]
	}},
	{name: "pmid", pattern: pmidPattern, normalize: first},
	{name: "orcid", pattern: orcidPattern, normalize: func(m []string) string {
		return fmt.Sprintf("%s-%s-%s-%s", m[1], m[2], m[3], m[4])
	}, validate: validOrcidChecksum},
	{name: "isbn", pattern: isbnPattern, normalize: func(m []string) string {
		return stripSeparators(m[1])
	}, validate: validIsbnChecksum},
	{name: "issn", pattern: issnPattern, normalize: func(m []string) string {
		return m[1] + "-" + strings.ToUpper(m[2])
	}, validate: validIssnChecksum},
	{name: "gnd", pattern: gndPattern, normalize: func(m []string) string {
		return "gnd:" + m[1]
	}},
	{name: "urn", pattern: urnPattern, normalize: first},
	{name: "url", pattern: urlPattern, normalize: first},
}

func first(matches []string) string {
	return matches[1]
}

func stripSeparators(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, value)
}

// DetectSchemes returns the names of all schemes whose lexical form matches
// the given value, in detection order. An empty slice means the value is not
// a recognizable persistent identifier.
func DetectSchemes(value string) []string {
	value = strings.TrimSpace(value)
	detected := make([]string, 0)
	for _, s := range schemes {
		matches := s.pattern.FindStringSubmatch(value)
		if matches == nil {
			continue
		}
		if s.validate != nil && !s.validate(matches) {
			continue
		}
		detected = append(detected, s.name)
	}
	return detected
}

// Normalize converts an identifier to its canonical string form for the
// given scheme. Values that don't match the scheme are returned unchanged.
func Normalize(value, schemeName string) string {
	value = strings.TrimSpace(value)
	for _, s := range schemes {
		if s.name != schemeName {
			continue
		}
		matches := s.pattern.FindStringSubmatch(value)
		if matches == nil {
			return value
		}
		return s.normalize(matches)
	}
	return value
}

// Validate detects the value's schemes, checks them against an optional
// declared scheme, and returns the canonical form along with the scheme it
// was normalized under. With no declared scheme the first detected scheme is
// used.
func Validate(value, declaredScheme string) (normalized, chosenScheme string, err error) {
	value = strings.TrimSpace(value)
	detected := DetectSchemes(value)
	if len(detected) == 0 {
		return "", "", &InvalidIdentifierError{Value: value}
	}
	if declaredScheme != "" {
		declared := strings.ToLower(declaredScheme)
		found := false
		for _, s := range detected {
			if s == declared {
				found = true
				break
			}
		}
		if !found {
			return "", "", &SchemeMismatchError{Value: value, Scheme: declaredScheme}
		}
		return Normalize(value, declared), declared, nil
	}
	return Normalize(value, detected[0]), detected[0], nil
}

// IsDOI returns true if the given value is lexically a DOI (with or without
// a resolver prefix).
func IsDOI(value string) bool {
	return doiPattern.MatchString(strings.TrimSpace(value))
}

// NormalizeDOI strips any resolver prefix from a DOI, leaving the bare
// '10.<prefix>/<suffix>' form.
func NormalizeDOI(value string) string {
	return Normalize(value, "doi")
}

// DOIURL returns the https resolver link for a DOI.
func DOIURL(doi string) string {
	return "https://doi.org/" + url.PathEscape(NormalizeDOI(doi))
}

// the ORCID check digit is computed with the ISO 7064 11-2 algorithm over
// the first 15 digits
func validOrcidChecksum(matches []string) bool {
	digits := matches[1] + matches[2] + matches[3] + matches[4]
	total := 0
	for _, r := range digits[:len(digits)-1] {
		total = (total + int(r-'0')) * 2
	}
	remainder := total % 11
	result := (12 - remainder) % 11
	check := byte('0' + result)
	if result == 10 {
		check = 'X'
	}
	return digits[len(digits)-1] == check
}

func validIsbnChecksum(matches []string) bool {
	digits := strings.ToUpper(stripSeparators(matches[1]))
	switch len(digits) {
	case 10:
		total := 0
		for i := 0; i < 10; i++ {
			d := int(digits[i] - '0')
			if digits[i] == 'X' {
				if i != 9 {
					return false
				}
				d = 10
			} else if digits[i] < '0' || digits[i] > '9' {
				return false
			}
			total += (10 - i) * d
		}
		return total%11 == 0
	case 13:
		total := 0
		for i := 0; i < 13; i++ {
			if digits[i] < '0' || digits[i] > '9' {
				return false
			}
			d := int(digits[i] - '0')
			if i%2 == 1 {
				d *= 3
			}
			total += d
		}
		return total%10 == 0
	}
	return false
}

func validIssnChecksum(matches []string) bool {
	digits := matches[1] + strings.ToUpper(matches[2])
	total := 0
	for i := 0; i < 7; i++ {
		total += (8 - i) * int(digits[i]-'0')
	}
	check := (11 - total%11) % 11
	if check == 10 {
		return digits[7] == 'X'
	}
	return digits[7] == byte('0'+check)
}
