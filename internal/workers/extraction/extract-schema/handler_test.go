package extractschema

import (
	"context"
	"errors"
	"testing"

	apperrors "formqa/internal/common/errors"
	"formqa/internal/common/logger"
	"formqa/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

const surveyBlob = `[null,["Campus survey",[
[111,"Full Name",null,0,[[1001,null,1]]],
[112,"Email Address",null,0,[[1002,null,1]]],
[113,"Roll Number",null,0,[[1003,null,1]]],
[114,"Tell us about yourself",null,1,[[1004,null,0]]],
[115,"Branch",null,2,[[1005,[["CSE"],["ECE"],[""],["Mechanical"]],0]]],
[116,"Hostel",null,3,[[1006,[["Hostel J"],["Hostel K"]],1]]],
[117,"Sports",null,4,[[1007,[["Cricket"],["Chess"],["Tennis"]],0]]],
[118,"Rate us",null,5,[[1008,[["1"],["5"]],0,["Poor","Great"]]]],
[119,"Grid",null,7,[[1009,[["Row"]],0]]],
[120,"Date of Birth",null,9,[[1010,null,0]]],
[121,"Preferred slot",null,10,[[1011,null,0]]],
[122,"Mystery",null,42,[[1012,null,0]]],
null,
[123,"Section header",null,8],
[124,"",null,0,[[1013]]],
[125,"Notes without entry",null,1,[[null,null,0]]]
],null,null,null,null,[null,"Campus survey"]],"/forms","Campus survey"]`

func createFormDocument(blob string) string {
	return `<!DOCTYPE html><html><head><title>Campus survey</title>
<script nonce="abc">var _docs_flag_initialData = {"x": 1};</script>
</head><body><div class="freebirdFormviewerView"></div>
<script type="text/javascript" nonce="abc">var FB_PUBLIC_LOAD_DATA_ = ` + blob + `;
var FB_LOAD_TIMESTAMP = 1700000000;</script>
</body></html>`
}

func expectedSurveyFields() []models.FieldDescriptor {
	return []models.FieldDescriptor{
		{ID: "field_1001", Label: "Full Name", Type: models.FieldShortText, ExternalKey: "1001"},
		{ID: "field_1002", Label: "Email Address", Type: models.FieldEmail, ExternalKey: "1002"},
		{ID: "field_1003", Label: "Roll Number", Type: models.FieldInteger, ExternalKey: "1003"},
		{ID: "field_1004", Label: "Tell us about yourself", Type: models.FieldLongText, ExternalKey: "1004"},
		{ID: "field_1005", Label: "Branch", Type: models.FieldSingleSelect, Options: []string{"CSE", "ECE", "Mechanical"}, ExternalKey: "1005"},
		{ID: "field_1006", Label: "Hostel", Type: models.FieldSingleSelect, Options: []string{"Hostel J", "Hostel K"}, ExternalKey: "1006"},
		{ID: "field_1007", Label: "Sports", Type: models.FieldMultiSelect, Options: []string{"Cricket", "Chess", "Tennis"}, ExternalKey: "1007"},
		{ID: "field_1008", Label: "Rate us", Type: models.FieldLinearScale, ExternalKey: "1008"},
		{ID: "field_1009", Label: "Grid", Type: models.FieldShortText, ExternalKey: "1009"},
		{ID: "field_1010", Label: "Date of Birth", Type: models.FieldDate, ExternalKey: "1010"},
		{ID: "field_1011", Label: "Preferred slot", Type: models.FieldTime, ExternalKey: "1011"},
		{ID: "field_1012", Label: "Mystery", Type: models.FieldShortText, ExternalKey: "1012"},
		{ID: "field_q15", Label: "Notes without entry", Type: models.FieldLongText},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Survey(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{Document: createFormDocument(surveyBlob)})

	require.NoError(t, err)
	assert.Equal(t, expectedSurveyFields(), output.Fields)
	assert.Equal(t, 3, output.Skipped)
	assert.Equal(t, "semicolon", output.Pattern)
	assert.False(t, output.Fields[len(output.Fields)-1].Deliverable())
}

func TestHandler_Execute_FieldCountMatchesSurvivingQuestions(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{Document: createFormDocument(surveyBlob)})
	require.NoError(t, err)

	// 16 question nodes, 3 of which are null, header-only or unlabeled
	assert.Equal(t, 16, len(output.Fields)+output.Skipped)
}

func TestHandler_Execute_Idempotent(t *testing.T) {
	h := createTestHandler(t)
	doc := createFormDocument(surveyBlob)

	first, err := h.ExtractSchema(context.Background(), doc)
	require.NoError(t, err)
	second, err := h.ExtractSchema(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHandler_Execute_PatternVariants(t *testing.T) {
	single := `[null,[null,[[1,"Pick one]; or not",null,2,[[77,[["A"],["B"]],0]]]]]]`

	tests := []struct {
		name    string
		doc     string
		pattern string
	}{
		{
			name:    "no terminator, end of line",
			doc:     "<script>FB_PUBLIC_LOAD_DATA_ = [null,[null,[[1,\"Pick one\",null,2,[[77,[[\"A\"],[\"B\"]],0]]]]]]\n</script>",
			pattern: "end-of-line",
		},
		{
			name:    "terminator inside a string",
			doc:     "<script>var FB_PUBLIC_LOAD_DATA_=" + single + ";</script>",
			pattern: "balanced",
		},
		{
			name:    "outside any script element",
			doc:     "FB_PUBLIC_LOAD_DATA_ = [null,[null,[[1,\"Pick one\",null,2,[[77,[[\"A\"],[\"B\"]],0]]]]]];",
			pattern: "semicolon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)

			output, err := h.Execute(context.Background(), &Input{Document: tt.doc})

			require.NoError(t, err)
			assert.Equal(t, tt.pattern, output.Pattern)
			require.Len(t, output.Fields, 1)
			assert.Equal(t, "field_77", output.Fields[0].ID)
			assert.Equal(t, []string{"A", "B"}, output.Fields[0].Options)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected error
	}{
		{name: "marker absent", doc: "<html><body>Hello</body></html>", expected: apperrors.ErrPatternNotFound},
		{name: "marker without assignment", doc: "<script>// FB_PUBLIC_LOAD_DATA_ is set later</script>", expected: apperrors.ErrPatternNotFound},
		{name: "undecodable literal", doc: "<script>FB_PUBLIC_LOAD_DATA_ = [null, {broken];</script>", expected: apperrors.ErrMalformedPayload},
		{name: "question list absent", doc: "<script>FB_PUBLIC_LOAD_DATA_ = [null,null];</script>", expected: apperrors.ErrEmptySchema},
		{name: "question list not an array", doc: `<script>FB_PUBLIC_LOAD_DATA_ = [null,[null,"none"]];</script>`, expected: apperrors.ErrEmptySchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t)

			_, err := h.Execute(context.Background(), &Input{Document: tt.doc})

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)
		})
	}
}

func TestHandler_Execute_EmptyQuestionList(t *testing.T) {
	h := createTestHandler(t)

	output, err := h.Execute(context.Background(), &Input{Document: "<script>FB_PUBLIC_LOAD_DATA_ = [null,[null,[]]];</script>"})

	require.NoError(t, err)
	assert.Empty(t, output.Fields)
	assert.Zero(t, output.Skipped)
}

func TestHandler_Execute_LargeEntryIDsKeepDigits(t *testing.T) {
	h := createTestHandler(t)
	doc := `<script>FB_PUBLIC_LOAD_DATA_ = [null,[null,[[1,"Name",null,0,[[1234567890123456789,null,1]]]]]];</script>`

	fields, err := h.ExtractSchema(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "1234567890123456789", fields[0].ExternalKey)
	assert.Equal(t, "field_1234567890123456789", fields[0].ID)
}

// ==========================
// Type Inference Tests
// ==========================

func TestRefineShortText(t *testing.T) {
	tests := []struct {
		label    string
		expected models.FieldType
	}{
		{"Email or phone number", models.FieldEmail},
		{"Your Age", models.FieldInteger},
		{"Member count", models.FieldInteger},
		{"Graduation Year", models.FieldInteger},
		{"Date of joining", models.FieldDate},
		{"DOB", models.FieldDate},
		{"Preferred time", models.FieldTime},
		{"City", models.FieldShortText},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, ruleFor(0).fieldType(tt.label))
		})
	}
}

func TestRuleFor_LabelOnlyRefinesFreeText(t *testing.T) {
	assert.Equal(t, models.FieldLongText, ruleFor(1).fieldType("Email"))
	assert.Equal(t, models.FieldShortText, ruleFor(99).fieldType("Age"))
	assert.Equal(t, models.FieldShortText, ruleFor(-1).fieldType("Anything"))
	assert.True(t, ruleFor(4).withOptions)
	assert.False(t, ruleFor(5).withOptions)
}
