// internal/workers/delivery/submit-form/models.go
package submitform

import "formqa/internal/models"

type Input struct {
	TargetURL string                   `json:"targetUrl"`
	Record    models.GeneratedRecord   `json:"record"`
	Fields    []models.FieldDescriptor `json:"fields"`
}

type Output struct {
	SubmitURL  string `json:"submitUrl"`
	StatusCode int    `json:"statusCode"`
	Entries    int    `json:"entries"`
}
