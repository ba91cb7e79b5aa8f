package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResourceType(t *testing.T) {
	tests := []struct {
		in   string
		want ResourceType
	}{
		{"event", ResourceTypeEvent},
		{"events", ResourceTypeEvent},
		{"/events/", ResourceTypeEvent},
		{"datasource", ResourceTypeDatasource},
		{"DataSources", ResourceTypeDatasource},
		{"data-sources", ResourceTypeDatasource},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseResourceType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseResourceType("")
	assert.Error(t, err)
	_, err = ParseResourceType("sections")
	assert.Error(t, err)
}

func TestResourceTypePaths(t *testing.T) {
	assert.Equal(t, "data-sources", ResourceTypeDatasource.Dir())
	assert.Equal(t, "data", ResourceTypeDatasource.DriverPrefix())
	assert.Equal(t, "/blueprints/datasources/", ResourceTypeDatasource.PageContext())

	assert.Equal(t, "events", ResourceTypeEvent.Dir())
	assert.Equal(t, "event", ResourceTypeEvent.DriverPrefix())
	assert.Equal(t, "/blueprints/events/", ResourceTypeEvent.PageContext())

	assert.False(t, ResourceType(0).Valid())
	assert.Equal(t, "ResourceType(7)", ResourceType(7).String())
}

func TestSortPreferenceOrderClause(t *testing.T) {
	assert.Equal(t, "name asc", DefaultSortPreference().OrderClause())
	assert.Equal(t, "release-date desc", SortPreference{Field: "release-date", Order: "desc"}.OrderClause())
}
