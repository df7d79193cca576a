package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quickseq/internal/models"
	"github.com/starford/quickseq/internal/plugin"
	"github.com/starford/quickseq/internal/settings"
)

const maxBody = 32 << 20 // data URLs of screenshots are large

// SettingsStore is the part of *settings.Store the API uses.
type SettingsStore interface {
	Set(key, value string) error
	All() (map[string]string, error)
	Resolve(defaults settings.Connection) (settings.Connection, error)
}

// ListRenderer pushes a rendered list to connected launchers.
type ListRenderer interface {
	RenderList(session string, items any)
}

// Handler holds API route handlers.
type Handler struct {
	features *plugin.Registry
	settings SettingsStore
	defaults settings.Connection
	lists    ListRenderer
	onChange func(settings.Connection)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithListRenderer sends every rendered list to r as well as the response.
func WithListRenderer(r ListRenderer) HandlerOption {
	return func(h *Handler) { h.lists = r }
}

// WithSettingsChanged is called with the resolved endpoint after a setting changes.
func WithSettingsChanged(fn func(settings.Connection)) HandlerOption {
	return func(h *Handler) { h.onChange = fn }
}

// NewHandler creates a new Handler.
func NewHandler(features *plugin.Registry, store SettingsStore, defaults settings.Connection, opts ...HandlerOption) *Handler {
	h := &Handler{features: features, settings: store, defaults: defaults}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) feature(w http.ResponseWriter, r *http.Request) (plugin.Feature, string, bool) {
	code := chi.URLParam(r, "code")
	f, err := h.features.Get(code)
	if err != nil {
		writeError(w, "feature lookup", err)
		return nil, code, false
	}
	return f, code, true
}

func (h *Handler) setList(code string) plugin.SetList {
	if h.lists == nil {
		return nil
	}
	return func(items []models.SearchResult) {
		h.lists.RenderList(code, items)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return false
	}
	return true
}

// Enter handles POST /api/features/{code}/enter.
//
//	@Summary		Enter a feature with a launcher payload
//	@Tags			features
//	@Accept			json
//	@Produce		json
//	@Param			code	path		string			true	"Feature code"
//	@Param			body	body		EnterRequest	true	"Payload"
//	@Success		200		{object}	statusResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/features/{code}/enter [post]
func (h *Handler) Enter(w http.ResponseWriter, r *http.Request) {
	f, code, ok := h.feature(w, r)
	if !ok {
		return
	}
	var req EnterRequest
	if !decode(w, r, &req) {
		return
	}
	action := plugin.Action{Code: code, Type: req.Type, Payload: req.Payload}
	if err := f.Enter(r.Context(), action, h.setList(code)); err != nil {
		writeError(w, "enter", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// Search handles POST /api/features/{code}/search.
//
//	@Summary		Search from the launcher input
//	@Tags			features
//	@Accept			json
//	@Produce		json
//	@Param			code	path		string			true	"Feature code"
//	@Param			body	body		SearchRequest	true	"Search term"
//	@Success		200		{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/features/{code}/search [post]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	f, code, ok := h.feature(w, r)
	if !ok {
		return
	}
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}
	out, err := f.Search(r.Context(), plugin.Action{Code: code, Type: req.Type}, req.Term, h.setList(code))
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if out.Items == nil {
		out.Items = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, out)
}

// Select handles POST /api/features/{code}/select.
//
//	@Summary		Select a rendered result
//	@Tags			features
//	@Accept			json
//	@Produce		json
//	@Param			code	path		string			true	"Feature code"
//	@Param			body	body		SelectRequest	true	"Selected item"
//	@Success		200		{object}	statusResponse
//	@Security		BearerAuth
//	@Router			/features/{code}/select [post]
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	f, code, ok := h.feature(w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if !decode(w, r, &req) {
		return
	}
	if err := f.Select(r.Context(), plugin.Action{Code: code, Type: req.Type}, req.Item, h.setList(code)); err != nil {
		writeError(w, "select", err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// ListSettings handles GET /api/settings.
//
//	@Summary		List stored and effective connection settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	SettingsResponse
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) ListSettings(w http.ResponseWriter, _ *http.Request) {
	stored, err := h.settings.All()
	if err != nil {
		writeError(w, "list settings", err)
		return
	}
	eff, err := h.settings.Resolve(h.defaults)
	if err != nil {
		writeError(w, "resolve settings", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Stored: stored, Effective: eff})
}

// PutSetting handles PUT /api/settings/{key}.
//
//	@Summary		Store one connection setting
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string			true	"Setting key"	Enums(host, port, token)
//	@Param			body	body		SettingRequest	true	"New value"
//	@Success		200		{object}	SettingsResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/{key} [put]
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req SettingRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.settings.Set(key, req.Value); err != nil {
		writeError(w, "put setting", err)
		return
	}
	if h.onChange != nil {
		if eff, err := h.settings.Resolve(h.defaults); err == nil {
			h.onChange(eff)
		}
	}
	h.ListSettings(w, r)
}
