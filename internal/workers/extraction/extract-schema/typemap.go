// internal/workers/extraction/extract-schema/typemap.go
package extractschema

import (
	"strings"

	"formqa/internal/models"
)

// typeRule maps a question type code to a field type.
type typeRule struct {
	base        models.FieldType
	withOptions bool
	refine      func(label string) models.FieldType
}

var typeTable = map[int]typeRule{
	0:  {base: models.FieldShortText, refine: refineShortText},
	1:  {base: models.FieldLongText},
	2:  {base: models.FieldSingleSelect, withOptions: true},
	3:  {base: models.FieldSingleSelect, withOptions: true},
	4:  {base: models.FieldMultiSelect, withOptions: true},
	5:  {base: models.FieldLinearScale},
	7:  {base: models.FieldShortText}, // grid
	9:  {base: models.FieldDate},
	10: {base: models.FieldTime},
}

var fallbackRule = typeRule{base: models.FieldShortText}

func ruleFor(code int) typeRule {
	if rule, ok := typeTable[code]; ok {
		return rule
	}
	return fallbackRule
}

func (r typeRule) fieldType(label string) models.FieldType {
	if r.refine != nil {
		return r.refine(label)
	}
	return r.base
}

func refineShortText(label string) models.FieldType {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "email"):
		return models.FieldEmail
	case containsAny(l, "number", "age", "count", "roll", "year"):
		return models.FieldInteger
	case containsAny(l, "date", "dob"):
		return models.FieldDate
	case strings.Contains(l, "time"):
		return models.FieldTime
	default:
		return models.FieldShortText
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
