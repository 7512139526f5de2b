// internal/workers/extraction/fetch-document/models.go
package fetchdocument

type Input struct {
	TargetURL string `json:"targetUrl"`
}

type Output struct {
	Document      string `json:"document"`
	NormalizedURL string `json:"normalizedUrl"`
	Relay         string `json:"relay"`
	Attempts      int    `json:"attempts"`
	FromCache     bool   `json:"fromCache"`
}
