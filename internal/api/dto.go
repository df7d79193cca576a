package api

import (
	"encoding/json"

	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/plugin"
	"github.com/starford/quickseq/internal/settings"
)

// EnterRequest is the body of POST /features/{code}/enter.
type EnterRequest struct {
	Type    string          `json:"type" example:"text" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty" swaggertype:"object"`
}

// SearchRequest is the body of POST /features/{code}/search.
type SearchRequest struct {
	Type string `json:"type,omitempty" example:"text"`
	Term string `json:"term" example:"project" validate:"required"`
}

// SelectRequest is the body of POST /features/{code}/select.
type SelectRequest struct {
	Type string              `json:"type,omitempty" example:"text"`
	Item models.SearchResult `json:"item" validate:"required"`
}

// SearchResponse reports the session generation and whether the result was rendered.
type SearchResponse = plugin.SearchOutcome

// SettingRequest is the body of PUT /settings/{key}.
type SettingRequest struct {
	Value string `json:"value" example:"12315" validate:"required"`
}

// SettingsResponse lists stored values and the endpoint they resolve to.
type SettingsResponse struct {
	Stored    map[string]string   `json:"stored" validate:"required"`
	Effective settings.Connection `json:"effective" validate:"required"`
}

type statusResponse struct {
	Status string `json:"status"`
}
