package handlers

import "net/http"

// ListVoices returns the narration voices available to clients as a
// displayName -> voiceID map.
func (a *App) ListVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := a.Voices.Voices(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("voices: catalog fetch failed")
		a.error(w, http.StatusBadGateway, "provider_failure", "voice catalog unavailable")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"voices": voices})
}
