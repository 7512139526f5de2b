// pkg/schemafile/schemafile.go
package schemafile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/common/validation"
	"formqa/internal/models"
)

// Load reads and validates a schema file.
func Load(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates raw schema file bytes and decodes them.
func Parse(data []byte) (*SchemaFile, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewInvalidSchemaError(fmt.Sprintf("not JSON: %v", err))
	}

	result, err := validation.ValidateDocument(documentSchema, raw)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, apperrors.NewInvalidSchemaError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var file SchemaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperrors.NewInvalidSchemaError(err.Error())
	}

	seen := make(map[string]bool, len(file.Fields))
	for _, f := range file.Fields {
		if f.ID == models.RecordIDKey {
			return nil, apperrors.NewInvalidSchemaError(fmt.Sprintf("field id %q is reserved for the record id", f.ID))
		}
		if seen[f.ID] {
			return nil, apperrors.NewInvalidSchemaError(fmt.Sprintf("duplicate field id %q", f.ID))
		}
		seen[f.ID] = true
		if len(f.Options) > 0 && !f.Type.IsSelect() {
			return nil, apperrors.NewInvalidSchemaError(fmt.Sprintf("field %q has options but type %s", f.ID, f.Type))
		}
		if opt, ok := firstDuplicate(f.Options); ok {
			return nil, apperrors.NewInvalidSchemaError(fmt.Sprintf("field %q lists option %q more than once", f.ID, opt))
		}
	}
	return &file, nil
}

// Save writes fields as a schema file stamped with the current time.
func Save(path string, fields []models.FieldDescriptor, sourceURL string) error {
	file := SchemaFile{
		Version:     CurrentVersion,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		SourceURL:   sourceURL,
		Fields:      fields,
	}
	if file.Fields == nil {
		file.Fields = []models.FieldDescriptor{}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func firstDuplicate(options []string) (string, bool) {
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if seen[o] {
			return o, true
		}
		seen[o] = true
	}
	return "", false
}
