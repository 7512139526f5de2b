// internal/workers/delivery/submit-sink/models.go
package submitsink

import "formqa/internal/models"

type Input struct {
	SinkURL string                 `json:"sinkUrl"`
	Record  models.GeneratedRecord `json:"record"`
}

type Output struct {
	StatusCode int `json:"statusCode"`
	Bytes      int `json:"bytes"`
}
