package deposit

import (
	"errors"
	"strings"

	"github.com/oarepo/depositd/identifiers"
	"github.com/oarepo/depositd/pidstore"
)

// DOIPolicy holds the rules a client-supplied DOI is checked against.
type DOIPolicy struct {
	// the one DOI this record must keep (already-published records); a
	// matching value is accepted unconditionally
	RequiredDOI string
	// DOIs accepted regardless of their prefix
	AllowedDOIs []string
	// prefixes issued internally; clients cannot supply DOIs under them
	ManagedPrefixes []string
	// prefixes rejected outright
	BannedPrefixes []string
}

// Validate checks a DOI value's format against the policy and returns its
// canonical form. An empty value is accepted only when emptyAllowed is true.
func (p DOIPolicy) Validate(value string, emptyAllowed bool) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if emptyAllowed {
			return "", nil
		}
		return "", &InvalidDOIError{Value: value}
	}
	if !identifiers.IsDOI(value) {
		return "", &InvalidDOIError{Value: value}
	}
	value = identifiers.NormalizeDOI(value)

	if p.RequiredDOI != "" {
		if value == p.RequiredDOI {
			return value, nil
		}
		return "", &RequiredDOIError{Required: p.RequiredDOI}
	}
	for _, allowed := range p.AllowedDOIs {
		if value == allowed {
			return value, nil
		}
	}

	prefix := strings.SplitN(value, "/", 2)[0]
	for _, managed := range p.ManagedPrefixes {
		if prefix == managed {
			return "", &ManagedPrefixError{Prefix: prefix}
		}
	}
	for _, banned := range p.BannedPrefixes {
		if prefix == banned {
			return "", &BannedPrefixError{Prefix: prefix}
		}
	}
	return value, nil
}

// CheckOwnership verifies that a DOI already present in the PID store is
// assigned to this record and not to another one. A DOI absent from the
// store is a new DOI and passes. recid identifies the current record; an
// empty recid means the record hasn't been created yet, in which case an
// existing DOI can never be claimed.
func (p DOIPolicy) CheckOwnership(store pidstore.Store, doi, recid string) error {
	if doi == "" || store == nil {
		return nil
	}
	// the record's fixed DOI needs no ownership check
	if p.RequiredDOI != "" && doi == p.RequiredDOI {
		return nil
	}

	doiPID, err := store.Get("doi", doi)
	var notFound *pidstore.NotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if recid == "" {
		return &OwnedDOIError{DOI: doi}
	}
	recidPID, err := store.Get("recid", recid)
	if errors.As(err, &notFound) {
		// no way to verify that this DOI belongs to this record
		return &OwnedDOIError{DOI: doi}
	}
	if err != nil {
		return err
	}

	if doiPID.HasObject() && doiPID.Object == recidPID.Object {
		return nil
	}
	return &OwnedDOIError{DOI: doi}
}
