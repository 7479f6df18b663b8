package licenses

// License reference data seeding. The bundled open-definition license list
// is loaded into the PID store in a single transaction: either every license
// loads, or none do.

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oarepo/depositd/pidstore"
)

//go:embed data/licenses.json data/licenses-map.json
var dataFS embed.FS

// the PID scheme licenses are minted under
const PIDType = "od_lic"

// the schema-version URL stamped onto license documents
const SchemaURL = "https://oarepo.org/schemas/licenses/license-v1.0.0.json"

// UpdateLegacyMeta rewrites legacy license terms into the open-definition
// shape: the boolean compliance flags become conformance values, and the
// document gets its schema tag.
func UpdateLegacyMeta(license map[string]any) map[string]any {
	updated := make(map[string]any, len(license))
	for key, value := range license {
		updated[key] = value
	}
	if _, ok := updated["od_conformance"]; !ok {
		updated["od_conformance"] = conformance(updated["is_okd_compliant"])
	}
	if _, ok := updated["osd_conformance"]; !ok {
		updated["osd_conformance"] = conformance(updated["is_osi_compliant"])
	}
	delete(updated, "is_okd_compliant")
	delete(updated, "is_osi_compliant")
	updated["$schema"] = SchemaURL
	return updated
}

func conformance(compliant any) string {
	if value, ok := compliant.(bool); ok && value {
		return "approved"
	}
	return "rejected"
}

// Load seeds the bundled licenses into the store, returning the number of
// licenses created. Licenses mapped to an already-resolvable alternate PID
// get an extra PID minted for the existing record instead of a new record.
// The whole batch is one transaction: any failure rolls everything back.
func Load(store *pidstore.BoltStore) (int, error) {
	var entries []map[string]any
	if err := readJSON("data/licenses.json", &entries); err != nil {
		return 0, err
	}
	var mapping map[string]string
	if err := readJSON("data/licenses-map.json", &mapping); err != nil {
		return 0, err
	}

	created := 0
	err := store.InTransaction(func(tx *pidstore.StoreTx) error {
		for _, entry := range entries {
			id, _ := entry["id"].(string)
			if id == "" {
				return &InvalidLicenseError{Message: "license is missing an id"}
			}
			altPID := mapping[id]
			if id == altPID {
				// already present under its own id
				continue
			}
			if _, err := tx.Get(PIDType, id); err == nil {
				// loaded on an earlier run
				continue
			} else {
				var notFound *pidstore.NotFoundError
				if !errors.As(err, &notFound) {
					return err
				}
			}
			if altPID != "" {
				if existing, err := tx.Get(PIDType, altPID); err == nil {
					// the mapped license exists: give it this id as well
					if _, err := tx.Mint(PIDType, id, existing.Object); err != nil {
						return err
					}
					continue
				} else {
					var notFound *pidstore.NotFoundError
					if !errors.As(err, &notFound) {
						return err
					}
				}
			}
			if err := createLicense(tx, id, entry); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// creates a new license record and mints its PID inside the transaction
func createLicense(tx *pidstore.StoreTx, id string, entry map[string]any) error {
	doc := UpdateLegacyMeta(entry)
	object := uuid.New()
	if err := tx.SaveRecord(object, doc); err != nil {
		return err
	}
	_, err := tx.Mint(PIDType, id, object)
	return err
}

func readJSON(path string, out any) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Couldn't read license data %s: %s", path, err.Error())
	}
	return json.Unmarshal(data, out)
}
