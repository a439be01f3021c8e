package handlers

import (
	"net/http"
	"strconv"
)

// ListVideos returns the owner's generated videos, newest first.
func (a *App) ListVideos(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := a.ownerID(w, r)
	if !ok {
		return
	}
	videos, err := a.Videos.ListByOwner(r.Context(), ownerID)
	if err != nil {
		a.Logger.Error().Err(err).Int64("owner_id", ownerID).Msg("videos: list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list videos")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"videos": videos})
}

// ListHistory returns the owner's past generation queries, newest first.
func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := a.ownerID(w, r)
	if !ok {
		return
	}
	entries, err := a.History.ListByOwner(r.Context(), ownerID)
	if err != nil {
		a.Logger.Error().Err(err).Int64("owner_id", ownerID).Msg("history: list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list history")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"history": entries})
}

func (a *App) ownerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("owner_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "owner_id is required")
		return 0, false
	}
	return id, true
}
