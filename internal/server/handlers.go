package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"vanguard-backend/internal/constants"
	"vanguard-backend/internal/domain"
	"vanguard-backend/internal/vault"

	"github.com/gorilla/mux"
)

func (s *Server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.APIKey) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "apiKey must not be empty"})
		return
	}

	s.steam.SetCredential(strings.TrimSpace(body.APIKey))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":                "ok",
		"credential_configured": s.steam.HasCredential(),
		"assistant_alive":       s.poller.Alive(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.social.GetProfile(r.Context(), mux.Vars(r)["steamID"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := s.social.GetFriends(r.Context(), mux.Vars(r)["steamID"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	if friends == nil {
		friends = []domain.Profile{}
	}
	writeJSON(w, http.StatusOK, friends)
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	games, err := s.library.GetLibrary(r.Context(), mux.Vars(r)["steamID"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// handleAchievements always answers 200 with the full three-part shape;
// the UI has no error fallback for this view.
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appID, err := strconv.ParseInt(vars["appID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid app id"})
		return
	}

	set := s.achievements.Resolve(r.Context(), vars["steamID"], appID)
	writeJSON(w, http.StatusOK, map[string]any{
		"game_name":       set.GameName,
		"achievements":    orEmpty(set.Achievements),
		"private_profile": set.PrivateProfile,
		"player_data_ok":  set.PlayerDataOK,
		"schema_ok":       set.SchemaOK,
		"globals_ok":      set.GlobalsOK,
		"video_links":     s.notes.VideoLinks(r.Context(), appID),
	})
}

func (s *Server) handleMasteryRefresh(w http.ResponseWriter, r *http.Request) {
	steamID := mux.Vars(r)["steamID"]
	games, err := s.library.GetLibrary(r.Context(), steamID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	mastered, hunter := s.mastery.Classify(r.Context(), steamID, games)
	writeJSON(w, http.StatusOK, map[string]any{
		"mastered": setToSlice(mastered),
		"hunter":   setToSlice(hunter),
	})
}

func (s *Server) handleFacetScan(w http.ResponseWriter, r *http.Request) {
	steamID := mux.Vars(r)["steamID"]
	games, err := s.library.GetLibrary(r.Context(), steamID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// The scan outlives the triggering request on purpose: batches plus
	// inter-batch delays can take longer than a UI round trip.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.FacetScanTimeout)
		defer cancel()
		if _, err := s.facets.Scan(ctx, games); err != nil {
			s.logger.Warn().Err(err).Msg("facet scan failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "scan started"})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres := s.facets.AvailableGenres(r.Context())
	if genres == nil {
		genres = []string{}
	}
	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	steamID := mux.Vars(r)["steamID"]
	games, err := s.library.GetLibrary(r.Context(), steamID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := parseVaultQuery(r)
	blacklist := s.blacklist.Load(r.Context())
	mastered, hunter := s.mastery.Current()
	facets := s.facets.Entries(r.Context())

	groups := vault.BuildView(games, blacklist, mastered, hunter, facets, q)
	writeJSON(w, http.StatusOK, map[string]any{
		"groups":           groups,
		"available_genres": s.facets.AvailableGenres(r.Context()),
	})
}

func parseVaultQuery(r *http.Request) domain.VaultQuery {
	params := r.URL.Query()
	q := domain.VaultQuery{
		TextFilter:   params.Get("q"),
		StatusFilter: domain.StatusFilter(params.Get("status")),
		SortKey:      domain.SortKey(params.Get("sort")),
		Grouping:     domain.Grouping(params.Get("group")),
	}
	if genres := params.Get("genres"); genres != "" {
		q.GenreFilter = strings.Split(genres, ",")
	}
	return q
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	steamID := mux.Vars(r)["steamID"]
	games, err := s.library.GetLibrary(r.Context(), steamID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	pool := vault.DiscoveryPool(games, s.blacklist.Load(r.Context()))
	writeJSON(w, http.StatusOK, orEmpty(pool))
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	steamID := mux.Vars(r)["steamID"]
	games, err := s.library.GetLibrary(r.Context(), steamID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			count = n
		}
	}

	picks := vault.RandomPick(games, s.blacklist.Load(r.Context()), count)
	writeJSON(w, http.StatusOK, orEmpty(picks))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	steamID := mux.Vars(r)["steamID"]
	games, err := s.library.GetLibrary(r.Context(), steamID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	matches := s.library.SearchSuggestions(games, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, orEmpty(matches))
}

func (s *Server) handleBlacklistGet(w http.ResponseWriter, r *http.Request) {
	ids := s.blacklist.List(r.Context())
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleBlacklistToggle(w http.ResponseWriter, r *http.Request) {
	appID, err := strconv.ParseInt(mux.Vars(r)["appID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid app id"})
		return
	}

	blacklisted, err := s.blacklist.Toggle(r.Context(), appID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"app_id": appID, "blacklisted": blacklisted})
}

func (s *Server) handleNoteGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appID, err := strconv.ParseInt(vars["appID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid app id"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"text": s.notes.GetNote(r.Context(), appID, vars["apiName"]),
	})
}

func (s *Server) handleNoteSet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appID, err := strconv.ParseInt(vars["appID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid app id"})
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.notes.SetNote(r.Context(), appID, vars["apiName"], body.Text); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVideoLinksGet(w http.ResponseWriter, r *http.Request) {
	appID, err := strconv.ParseInt(mux.Vars(r)["appID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid app id"})
		return
	}
	writeJSON(w, http.StatusOK, s.notes.VideoLinks(r.Context(), appID))
}

func (s *Server) handleVideoLinksSet(w http.ResponseWriter, r *http.Request) {
	appID, err := strconv.ParseInt(mux.Vars(r)["appID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid app id"})
		return
	}

	var links map[string]string
	if err := json.NewDecoder(r.Body).Decode(&links); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if err := s.notes.SetVideoLinks(r.Context(), appID, links); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssistantGuide(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Game        string `json:"game"`
		Achievement string `json:"achievement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Game == "" || body.Achievement == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "game and achievement are required"})
		return
	}

	if !s.poller.Alive() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "assistant is not available"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.AssistantTimeout)
	defer cancel()

	guide, err := s.assistant.GenerateGuide(ctx, body.Game, body.Achievement)
	if err != nil {
		s.logger.Warn().Err(err).Msg("guide generation failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "assistant request failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"guide": guide})
}

func setToSlice(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
