package service

import (
	"context"
	"fmt"
	"testing"

	"vanguard-backend/internal/constants"
	"vanguard-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Thresholds(t *testing.T) {
	res := &stubResolver{sets: map[int64]*domain.AchievementSet{
		1: achievementSetOf(10, 10), // mastered
		2: achievementSetOf(5, 10),  // hunter, exactly 0.5
		3: achievementSetOf(9, 10),  // hunter
		4: achievementSetOf(4, 10),  // neither, below 0.5
		5: achievementSetOf(0, 0),   // no achievements: neither
		6: {},                       // resolver failure: unknown, neither
	}}
	svc := NewMasteryService(res, zerolog.Nop())

	games := []domain.Game{
		{AppID: 1, TotalPlaytime: 600},
		{AppID: 2, TotalPlaytime: 500},
		{AppID: 3, TotalPlaytime: 400},
		{AppID: 4, TotalPlaytime: 300},
		{AppID: 5, TotalPlaytime: 200},
		{AppID: 6, TotalPlaytime: 100},
	}

	mastered, hunter := svc.Classify(context.Background(), "76561198000000000", games)

	assert.Equal(t, map[int64]struct{}{1: {}}, mastered)
	assert.Equal(t, map[int64]struct{}{2: {}, 3: {}}, hunter)
}

func TestClassify_CandidateBound(t *testing.T) {
	res := &stubResolver{sets: map[int64]*domain.AchievementSet{}}
	svc := NewMasteryService(res, zerolog.Nop())

	var games []domain.Game
	for i := 1; i <= 30; i++ {
		games = append(games, domain.Game{AppID: int64(i), TotalPlaytime: i})
	}

	svc.Classify(context.Background(), "76561198000000000", games)

	assert.Equal(t, constants.MasteryCandidateLimit, res.callCount())
	// Highest playtime games are the candidates.
	for _, id := range res.calls {
		assert.Greater(t, id, int64(10), fmt.Sprintf("app %d should not be a candidate", id))
	}
}

func TestClassify_MasteredMonotonic(t *testing.T) {
	res := &stubResolver{sets: map[int64]*domain.AchievementSet{
		1: achievementSetOf(10, 10),
		2: achievementSetOf(10, 10),
	}}
	svc := NewMasteryService(res, zerolog.Nop())

	both := []domain.Game{
		{AppID: 1, TotalPlaytime: 100},
		{AppID: 2, TotalPlaytime: 50},
	}
	passOne, _ := svc.Classify(context.Background(), "76561198000000000", both)
	require.Len(t, passOne, 2)

	// Second pass over a subset: the mastered set must not shrink.
	subset := []domain.Game{{AppID: 2, TotalPlaytime: 50}}
	passTwo, _ := svc.Classify(context.Background(), "76561198000000000", subset)

	for id := range passOne {
		assert.Contains(t, passTwo, id)
	}
}

func TestClassify_HunterRecomputedFresh(t *testing.T) {
	res := &stubResolver{sets: map[int64]*domain.AchievementSet{
		1: achievementSetOf(7, 10),
	}}
	svc := NewMasteryService(res, zerolog.Nop())

	games := []domain.Game{{AppID: 1, TotalPlaytime: 100}}
	_, hunterOne := svc.Classify(context.Background(), "76561198000000000", games)
	assert.Contains(t, hunterOne, int64(1))

	// Pass without the hunter candidate: the hunter set resets.
	_, hunterTwo := svc.Classify(context.Background(), "76561198000000000", nil)
	assert.Empty(t, hunterTwo)

	// But mastered/hunter disjointness and mastered growth held.
	mastered, _ := svc.Current()
	assert.Empty(t, mastered)
}

func TestMergeMastered(t *testing.T) {
	prev := map[int64]struct{}{1: {}, 2: {}}
	found := map[int64]struct{}{2: {}, 3: {}}

	out := MergeMastered(prev, found)

	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}, 3: {}}, out)
	// Inputs untouched.
	assert.Len(t, prev, 2)
	assert.Len(t, found, 2)
}

func TestTopByPlaytime(t *testing.T) {
	games := []domain.Game{
		{AppID: 1, TotalPlaytime: 10},
		{AppID: 2, TotalPlaytime: 30},
		{AppID: 3, TotalPlaytime: 20},
	}

	top := TopByPlaytime(games, 2)

	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].AppID)
	assert.Equal(t, int64(3), top[1].AppID)
	// Input order preserved.
	assert.Equal(t, int64(1), games[0].AppID)
}
