package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"iptv-relay/internal/settings"
)

// maxSettingBytes bounds a stored value. The largest real value is a
// cached channel list, which stays well under this.
const maxSettingBytes = 10 << 20

// ListSettings returns all stored setting keys.
func (h *Handlers) ListSettings(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.Keys(r.Context())
	if err != nil {
		writeJSONError(w, "failed to list settings", http.StatusInternalServerError)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{"keys": keys})
}

// GetSetting returns the stored value for a key.
func (h *Handlers) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	value, err := h.store.Get(r.Context(), key)
	if errors.Is(err, settings.ErrNotFound) {
		writeJSONError(w, "setting not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeJSONError(w, "failed to read setting", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"key":   key,
		"value": value,
	})
}

// PutSetting stores the request body as the value for a key. The body must
// be a JSON document; a bare string should arrive quoted.
func (h *Handlers) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSettingBytes))
	if err != nil {
		writeJSONError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		writeJSONError(w, "value must be valid JSON", http.StatusBadRequest)
		return
	}

	if err := h.store.Set(r.Context(), key, body); err != nil {
		writeJSONError(w, "failed to store setting", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "saved")
}

// DeleteSetting removes a key. Deleting an absent key succeeds.
func (h *Handlers) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	if err := h.store.Delete(r.Context(), key); err != nil {
		writeJSONError(w, "failed to delete setting", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "deleted")
}
