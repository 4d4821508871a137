package service

import (
	"context"
	"fmt"

	"vanguard-backend/internal/store"

	"github.com/rs/zerolog"
)

// NotesService persists the user's per-achievement free-text notes and
// per-game video-link overrides.
type NotesService struct {
	store  store.Store
	logger zerolog.Logger
}

func NewNotesService(st store.Store, logger zerolog.Logger) *NotesService {
	return &NotesService{store: st, logger: logger}
}

func (s *NotesService) GetNote(ctx context.Context, appID int64, apiName string) string {
	text, _ := store.GetJSON[string](ctx, s.store, s.logger, noteKey(appID, apiName))
	return text
}

// SetNote stores the note text; empty text removes the key.
func (s *NotesService) SetNote(ctx context.Context, appID int64, apiName, text string) error {
	if text == "" {
		return s.store.Remove(ctx, noteKey(appID, apiName))
	}
	return store.SetJSON(ctx, s.store, noteKey(appID, apiName), text)
}

// VideoLinks returns the apiName -> url overrides for one game.
func (s *NotesService) VideoLinks(ctx context.Context, appID int64) map[string]string {
	links, ok := store.GetJSON[map[string]string](ctx, s.store, s.logger, videoLinksKey(appID))
	if !ok {
		return map[string]string{}
	}
	return links
}

func (s *NotesService) SetVideoLinks(ctx context.Context, appID int64, links map[string]string) error {
	return store.SetJSON(ctx, s.store, videoLinksKey(appID), links)
}

func noteKey(appID int64, apiName string) string {
	return fmt.Sprintf("note:%d:%s", appID, apiName)
}

func videoLinksKey(appID int64) string {
	return fmt.Sprintf("videolinks:%d", appID)
}
