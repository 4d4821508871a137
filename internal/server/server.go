package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"vanguard-backend/internal/api"
	"vanguard-backend/internal/assistant"
	"vanguard-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server is the local JSON control surface the dashboard UI talks to.
type Server struct {
	steam        *api.SteamClient
	library      *service.LibraryService
	social       *service.SocialService
	achievements *service.AchievementService
	mastery      *service.MasteryService
	facets       *service.FacetService
	blacklist    *service.BlacklistService
	notes        *service.NotesService
	assistant    *assistant.Client
	poller       *assistant.Poller
	logger       zerolog.Logger
}

func NewServer(
	steam *api.SteamClient,
	library *service.LibraryService,
	social *service.SocialService,
	achievements *service.AchievementService,
	mastery *service.MasteryService,
	facets *service.FacetService,
	blacklist *service.BlacklistService,
	notes *service.NotesService,
	assistantClient *assistant.Client,
	poller *assistant.Poller,
	logger zerolog.Logger,
) *Server {
	return &Server{
		steam:        steam,
		library:      library,
		social:       social,
		achievements: achievements,
		mastery:      mastery,
		facets:       facets,
		blacklist:    blacklist,
		notes:        notes,
		assistant:    assistantClient,
		poller:       poller,
		logger:       logger,
	}
}

func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	a := r.PathPrefix("/api").Subrouter()

	a.HandleFunc("/config/credential", s.handleSetCredential).Methods(http.MethodPost)
	a.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	a.HandleFunc("/profile/{steamID}", s.handleProfile).Methods(http.MethodGet)
	a.HandleFunc("/friends/{steamID}", s.handleFriends).Methods(http.MethodGet)
	a.HandleFunc("/library/{steamID}", s.handleLibrary).Methods(http.MethodGet)
	a.HandleFunc("/achievements/{steamID}/{appID}", s.handleAchievements).Methods(http.MethodGet)
	a.HandleFunc("/mastery/{steamID}/refresh", s.handleMasteryRefresh).Methods(http.MethodPost)

	a.HandleFunc("/facets/scan/{steamID}", s.handleFacetScan).Methods(http.MethodPost)
	a.HandleFunc("/facets/genres", s.handleGenres).Methods(http.MethodGet)

	a.HandleFunc("/vault/{steamID}", s.handleVault).Methods(http.MethodGet)
	a.HandleFunc("/discovery/{steamID}", s.handleDiscovery).Methods(http.MethodGet)
	a.HandleFunc("/random/{steamID}", s.handleRandom).Methods(http.MethodGet)
	a.HandleFunc("/search/{steamID}", s.handleSearch).Methods(http.MethodGet)

	a.HandleFunc("/blacklist", s.handleBlacklistGet).Methods(http.MethodGet)
	a.HandleFunc("/blacklist/{appID}/toggle", s.handleBlacklistToggle).Methods(http.MethodPost)

	a.HandleFunc("/notes/{appID}/{apiName}", s.handleNoteGet).Methods(http.MethodGet)
	a.HandleFunc("/notes/{appID}/{apiName}", s.handleNoteSet).Methods(http.MethodPut)
	a.HandleFunc("/videolinks/{appID}", s.handleVideoLinksGet).Methods(http.MethodGet)
	a.HandleFunc("/videolinks/{appID}", s.handleVideoLinksSet).Methods(http.MethodPut)

	a.HandleFunc("/assistant/guide", s.handleAssistantGuide).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the gateway taxonomy onto HTTP statuses: a missing
// credential is a blocking prompt (401), everything upstream-shaped is a
// retryable banner (502).
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ue *api.UpstreamError
	var te *api.TransportError
	switch {
	case errors.Is(err, api.ErrNoCredential):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "credential not configured"})
	case errors.As(err, &ue):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "upstream error", "upstream_status": ue.Status})
	case errors.As(err, &te):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unreachable"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
