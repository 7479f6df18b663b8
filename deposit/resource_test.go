package deposit

// These tests verify the resource-type round trip.

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tests parsing and dumping the combined string form
func TestResourceTypeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	rt, err := ParseResourceType("publication-article")
	assert.Nil(err)
	assert.Equal(ResourceType{Type: "publication", Subtype: "article"}, rt)
	assert.Equal("publication-article", DumpResourceType(rt))

	rt, err = ParseResourceType("dataset")
	assert.Nil(err)
	assert.Equal(ResourceType{Type: "dataset"}, rt)
	assert.Equal("dataset", DumpResourceType(rt))

	_, err = ParseResourceType("")
	assert.NotNil(err, "Empty resource type was accepted.")
}

// tests whether both the string and the object wire forms load
func TestResourceTypeUnmarshal(t *testing.T) {
	assert := assert.New(t)

	var rt ResourceType
	assert.Nil(json.Unmarshal([]byte(`"publication-article"`), &rt))
	assert.Equal(ResourceType{Type: "publication", Subtype: "article"}, rt)

	rt = ResourceType{}
	assert.Nil(json.Unmarshal([]byte(`{"type": "publication", "subtype": "article"}`), &rt))
	assert.Equal(ResourceType{Type: "publication", Subtype: "article"}, rt)

	assert.NotNil(json.Unmarshal([]byte(`{"subtype": "article"}`), &rt))
	assert.NotNil(json.Unmarshal([]byte(`42`), &rt))
}
