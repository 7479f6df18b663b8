package deposit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// a record's resource type, split into a general type and an optional
// subtype ("publication-article" -> type "publication", subtype "article")
type ResourceType struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
}

// ParseResourceType deserializes the combined string form.
func ParseResourceType(value string) (ResourceType, error) {
	if value == "" {
		return ResourceType{}, fmt.Errorf("Type must be specified.")
	}
	parts := strings.SplitN(value, "-", 2)
	rt := ResourceType{Type: parts[0]}
	if len(parts) == 2 {
		rt.Subtype = parts[1]
	}
	return rt, nil
}

// DumpResourceType serializes a resource type back to its combined string
// form. This is deliberately a separate function from ParseResourceType:
// loading and dumping are distinct operations.
func DumpResourceType(rt ResourceType) string {
	if rt.Subtype != "" {
		return rt.Type + "-" + rt.Subtype
	}
	return rt.Type
}

// UnmarshalJSON accepts the combined string form or the split object form,
// so an already-normalized document loads unchanged.
func (rt *ResourceType) UnmarshalJSON(data []byte) error {
	var combined string
	if err := json.Unmarshal(data, &combined); err == nil {
		parsed, err := ParseResourceType(combined)
		if err != nil {
			return err
		}
		*rt = parsed
		return nil
	}
	var split struct {
		Type    string `json:"type"`
		Subtype string `json:"subtype"`
	}
	if err := json.Unmarshal(data, &split); err != nil {
		return fmt.Errorf("Not a string.")
	}
	if split.Type == "" {
		return fmt.Errorf("Type must be specified.")
	}
	rt.Type = split.Type
	rt.Subtype = split.Subtype
	return nil
}
