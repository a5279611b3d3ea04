package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_JobItemResponse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"public": true, "jobItem": {"id": 1, "title": "Dev", "daysAgo": 2}}`, false},
		{"missing jobItem", `{"public": true}`, true},
		{"string id", `{"jobItem": {"id": "1", "title": "Dev"}}`, true},
		{"zero id", `{"jobItem": {"id": 0, "title": "Dev"}}`, true},
		{"not json", `<html>oops</html>`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(JobItemResponse, []byte(tt.doc))
			if tt.wantErr {
				require.Error(t, err)
				var vErr *ValidationError
				assert.True(t, errors.As(err, &vErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_JobItemsResponse(t *testing.T) {
	err := Validate(JobItemsResponse, []byte(`{"public": true, "sorted": false, "jobItems": []}`))
	assert.NoError(t, err)

	err = Validate(JobItemsResponse, []byte(`{"jobItems": [{"id": 3}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestValidate_BookmarkIDs(t *testing.T) {
	assert.NoError(t, Validate(BookmarkIDs, []byte(`[1, 2, 3]`)))
	assert.NoError(t, Validate(BookmarkIDs, []byte(`[]`)))
	assert.Error(t, Validate(BookmarkIDs, []byte(`["1"]`)))
	assert.Error(t, Validate(BookmarkIDs, []byte(`{"ids": [1]}`)))
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "nope", loadErr.Name)
}
