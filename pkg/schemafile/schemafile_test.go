package schemafile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFields() []models.FieldDescriptor {
	return []models.FieldDescriptor{
		{ID: "field_11", Label: "Full Name", Type: models.FieldShortText, ExternalKey: "11"},
		{ID: "field_12", Label: "Hostel", Type: models.FieldSingleSelect, Options: []string{"Block A", "Block B"}, ExternalKey: "12"},
		{ID: "field_q2", Label: "Notes", Type: models.FieldLongText},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")

	require.NoError(t, Save(path, createTestFields(), "https://docs.google.com/forms/d/e/XYZ/viewform"))
	file, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, file.Version)
	assert.NotEmpty(t, file.LastUpdated)
	assert.Equal(t, "https://docs.google.com/forms/d/e/XYZ/viewform", file.SourceURL)
	assert.Equal(t, createTestFields(), file.Fields)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{"version":`},
		{name: "missing fields", data: `{"version":"1"}`},
		{name: "wrong version", data: `{"version":"2","fields":[]}`},
		{name: "unknown type", data: `{"version":"1","fields":[{"id":"a","label":"A","type":"rating"}]}`},
		{name: "missing label", data: `{"version":"1","fields":[{"id":"a","type":"email"}]}`},
		{name: "empty id", data: `{"version":"1","fields":[{"id":"","label":"A","type":"email"}]}`},
		{name: "unknown property", data: `{"version":"1","fields":[{"id":"a","label":"A","type":"email","required":true}]}`},
		{name: "duplicate id", data: `{"version":"1","fields":[{"id":"a","label":"A","type":"email"},{"id":"a","label":"B","type":"date"}]}`},
		{name: "reserved record id", data: `{"version":"1","fields":[{"id":"id","label":"Id","type":"short-text"},{"id":"name","label":"Name","type":"short-text"}]}`},
		{name: "duplicate options", data: `{"version":"1","fields":[{"id":"color","label":"Color","type":"single-select","options":["Red","Red","Blue"]}]}`},
		{name: "options on text", data: `{"version":"1","fields":[{"id":"a","label":"A","type":"short-text","options":["x"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidSchema))
		})
	}
}

func TestParse_HandWritten(t *testing.T) {
	file, err := Parse([]byte(`{
		"version": "1",
		"fields": [
			{"id": "branch", "label": "Branch", "type": "multi-select", "options": ["CSE", "ECE"]},
			{"id": "dob", "label": "Date of birth", "type": "date", "externalKey": "99"}
		]
	}`))

	require.NoError(t, err)
	require.Len(t, file.Fields, 2)
	assert.False(t, file.Fields[0].Deliverable())
	assert.True(t, file.Fields[1].Deliverable())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
