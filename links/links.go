package links

// Serialization of stored deposit/record documents into REST responses with
// computed hyperlinks. Whether a document is a deposit or a published record
// is a structural property of the document itself: deposits carry the
// deposit-workflow bookkeeping fields, records don't.

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/oarepo/depositd/identifiers"
	"github.com/oarepo/depositd/pidstore"
)

// Config holds everything needed to build links. All values are fixed at
// construction; nothing is read from ambient state.
type Config struct {
	// base URL for user-facing pages
	SiteURL string
	// base URL for the REST API
	APIURL string
	// file types eligible for thumbnails
	ThumbnailTypes []string
	// pre-rendered thumbnail sizes
	ThumbnailSizes []int
}

// Dumper derives the outbound representation of a record, including its
// hyperlink set. Safe for concurrent use.
type Dumper struct {
	Config Config
	// resolves PID version/part-of relation graphs; nil leaves relation
	// links out for documents that don't already carry relations
	Relations pidstore.RelationResolver
}

// Record is a stored record document together with its envelope data.
type Record struct {
	// the record's PID value
	PID string
	// creation timestamp
	Created time.Time
	// the stored metadata document, including bookkeeping fields
	// (_deposit, _buckets, _files, recid, relations)
	Metadata map[string]any
}

// IsDeposit reports whether a metadata document is a deposit: it carries the
// deposit-workflow bookkeeping fields.
func IsDeposit(metadata map[string]any) bool {
	_, ok := metadata["_deposit"]
	return ok
}

// IsRecord reports whether a metadata document is a published record rather
// than a deposit.
func IsRecord(metadata map[string]any) bool {
	return !IsDeposit(metadata)
}

// Dump serializes a record into its outbound JSON representation: the
// envelope fields, the metadata (with non-public fields redacted for
// published records), and the computed links. The input document is not
// modified.
func (d *Dumper) Dump(rec Record) (map[string]any, error) {
	m := make(map[string]any, len(rec.Metadata)+1)
	for key, value := range rec.Metadata {
		m[key] = value
	}

	relations, err := d.relationsFor(rec.PID, m)
	if err != nil {
		return nil, err
	}

	// draft existence is not public: redact it from published-record views
	if IsRecord(m) && len(relations.Version) > 0 {
		redacted := make([]pidstore.VersionRelation, len(relations.Version))
		copy(redacted, relations.Version)
		redacted[0].DraftChildDeposit = nil
		relations.Version = redacted
	}
	m["relations"] = relations

	links := d.commonLinks(m)
	if IsDeposit(m) {
		d.depositLinks(m, relations, links)
	} else {
		d.recordLinks(m, relations, links)
		// storage bookkeeping is not public: redact it from published-record
		// views, after the links that depend on it have been computed
		for key := range m {
			if strings.HasPrefix(key, "_") {
				delete(m, key)
			}
		}
	}

	out := map[string]any{
		"id":       rec.PID,
		"created":  rec.Created.UTC().Format(time.RFC3339),
		"links":    links,
		"metadata": m,
	}
	for _, key := range []string{"conceptrecid", "doi", "conceptdoi"} {
		if value, ok := m[key].(string); ok && value != "" {
			out[key] = value
		}
	}
	return out, nil
}

// fetches the relation graph, either from the document itself (already
// serialized relations) or from the relation resolver
func (d *Dumper) relationsFor(pid string, m map[string]any) (pidstore.Relations, error) {
	if raw, ok := m["relations"]; ok {
		return relationsFromDoc(raw)
	}
	if d.Relations == nil {
		return pidstore.Relations{}, nil
	}
	// deposits resolve relations through their published record's PID
	if IsDeposit(m) {
		if recid, ok := m["recid"].(string); ok && recid != "" {
			pid = recid
		}
	}
	return d.Relations.RelationsFor(pidstore.RelatedPID{Type: "recid", Value: pid})
}

// converts a relations value from a stored JSON document back into its
// typed form
func relationsFromDoc(raw any) (pidstore.Relations, error) {
	if typed, ok := raw.(pidstore.Relations); ok {
		return typed, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return pidstore.Relations{}, err
	}
	var relations pidstore.Relations
	err = json.Unmarshal(data, &relations)
	return relations, err
}

// links shared by deposits and records: DOI badges/resolvers and thumbnails
func (d *Dumper) commonLinks(m map[string]any) map[string]any {
	links := make(map[string]any)

	if doi, ok := m["doi"].(string); ok && doi != "" {
		links["badge"] = fmt.Sprintf("%s/badge/doi/%s.svg", d.Config.SiteURL, url.PathEscape(doi))
		links["doi"] = identifiers.DOIURL(doi)
	}
	if conceptDOI, ok := m["conceptdoi"].(string); ok && conceptDOI != "" {
		links["conceptbadge"] = fmt.Sprintf("%s/badge/doi/%s.svg", d.Config.SiteURL, url.PathEscape(conceptDOI))
		links["conceptdoi"] = identifiers.DOIURL(conceptDOI)
	}

	recid, _ := m["recid"].(string)
	files, _ := m["_files"].([]any)
	for _, entry := range files {
		file, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		fileType, _ := file["type"].(string)
		if !d.thumbnailEligible(fileType) {
			continue
		}
		// the first eligible file supplies the preview
		thumbs := make(map[string]any, len(d.Config.ThumbnailSizes))
		for _, size := range d.Config.ThumbnailSizes {
			thumbs[fmt.Sprintf("%d", size)] = d.uiLink("record", recid, fmt.Sprintf("thumb%d", size))
		}
		links["thumbs"] = thumbs
		links["thumb250"] = d.uiLink("record", recid, "thumb250")
		break
	}
	return links
}

// links specific to published records
func (d *Dumper) recordLinks(m map[string]any, relations pidstore.Relations, links map[string]any) {
	recid, _ := m["recid"].(string)
	if bucket := bucketID(m, "record"); bucket != "" {
		links["bucket"] = d.apiLink("files", bucket)
	}
	links["html"] = d.uiLink("record", recid)
	d.relationLinks(m, relations, links)
}

// links specific to deposits; record links appear only once the deposit has
// been published
func (d *Dumper) depositLinks(m map[string]any, relations pidstore.Relations, links map[string]any) {
	recid, _ := m["recid"].(string)
	if bucket := bucketID(m, "deposit"); bucket != "" {
		links["bucket"] = d.apiLink("files", bucket)
	}
	if isPublished(m) {
		links["record"] = d.apiLink("records", recid)
		links["record_html"] = d.uiLink("record", recid)
	}
	d.relationLinks(m, relations, links)
}

// links derived from the PID relation graph
func (d *Dumper) relationLinks(m map[string]any, relations pidstore.Relations, links map[string]any) {
	if len(relations.Version) == 0 {
		return
	}
	version := relations.Version[0]
	if version.LastChild != nil {
		links["latest"] = d.apiLink("records", version.LastChild.Value)
		links["latest_html"] = d.uiLink("record", version.LastChild.Value)
	}
	if IsDeposit(m) && version.DraftChildDeposit != nil {
		links["latest_draft"] = d.apiLink("deposit", "depositions", version.DraftChildDeposit.Value)
		links["latest_draft_html"] = d.uiLink("deposit", version.DraftChildDeposit.Value)
	}
}

func (d *Dumper) thumbnailEligible(fileType string) bool {
	for _, eligible := range d.Config.ThumbnailTypes {
		if fileType == eligible {
			return true
		}
	}
	return false
}

// a deposit has been published once the deposit bookkeeping carries its
// record PID
func isPublished(m map[string]any) bool {
	bookkeeping, ok := m["_deposit"].(map[string]any)
	if !ok {
		return false
	}
	_, published := bookkeeping["pid"]
	return published
}

// the storage bucket assigned to the given object kind ("record" or
// "deposit"), if any
func bucketID(m map[string]any, kind string) string {
	buckets, ok := m["_buckets"].(map[string]any)
	if !ok {
		return ""
	}
	bucket, _ := buckets[kind].(string)
	return bucket
}

func (d *Dumper) uiLink(parts ...string) string {
	link := d.Config.SiteURL
	for _, part := range parts {
		link += "/" + url.PathEscape(part)
	}
	return link
}

func (d *Dumper) apiLink(parts ...string) string {
	link := d.Config.APIURL
	for _, part := range parts {
		link += "/" + url.PathEscape(part)
	}
	return link
}
