package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/park285/Cheese-RPS-bot/internal/domain"
)

// memrepo is used when no DATABASE_URL is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	roundsByUUID   map[string]*domain.RoundLog
	roundsByPlayer map[string][]*domain.RoundLog // playerHash|roomHash -> rounds, latest last

	profiles map[string]*domain.PlayerProfile
}

func NewMemoryRepository() Repository {
	return &memrepo{
		roundsByUUID:   make(map[string]*domain.RoundLog),
		roundsByPlayer: make(map[string][]*domain.RoundLog),
		profiles:       make(map[string]*domain.PlayerProfile),
	}
}

func (m *memrepo) InsertRound(ctx context.Context, round *domain.RoundLog) (int64, error) {
	if round == nil {
		return 0, ErrDuplicateRound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.roundsByUUID[round.RoundUUID]; exists {
		return 0, ErrDuplicateRound
	}

	m.nextID++
	stored := *round
	stored.ID = m.nextID

	key := playerKey(round.PlayerHash, round.RoomHash)
	m.roundsByUUID[round.RoundUUID] = &stored
	m.roundsByPlayer[key] = append(m.roundsByPlayer[key], &stored)
	return stored.ID, nil
}

func (m *memrepo) GetRecentRounds(ctx context.Context, playerHash, roomHash string, limit int) ([]*domain.RoundLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.roundsByPlayer[playerKey(playerHash, roomHash)]
	items := make([]*domain.RoundLog, 0, len(list))
	for _, r := range list {
		dup := *r
		items = append(items, &dup)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].PlayedAt.Equal(items[j].PlayedAt) {
			return items[i].PlayedAt.After(items[j].PlayedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *memrepo) GetProfile(ctx context.Context, playerHash, roomHash string) (*domain.PlayerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.profiles[playerKey(playerHash, roomHash)]; ok && p != nil {
		dup := *p
		return &dup, nil
	}
	return nil, nil
}

func (m *memrepo) AddProfileRound(ctx context.Context, r ProfileRound) (*domain.PlayerProfile, error) {
	key := playerKey(r.PlayerHash, r.RoomHash)

	m.mu.Lock()
	defer m.mu.Unlock()

	var current *domain.PlayerProfile
	if p, ok := m.profiles[key]; ok && p != nil {
		dup := *p
		current = &dup
	}
	updated, err := applyProfileRound(current, r)
	if err != nil {
		return nil, err
	}
	m.profiles[key] = updated
	out := *updated
	return &out, nil
}

func (m *memrepo) SetPreferredPersonality(ctx context.Context, playerHash, roomHash, personality string) (*domain.PlayerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[playerKey(playerHash, roomHash)]
	if !ok || p == nil {
		return nil, nil
	}
	p.PreferredPersonality = personality
	p.UpdatedAt = time.Now()
	out := *p
	return &out, nil
}

// applyProfileRound mirrors the ON CONFLICT update of the Postgres repository.
func applyProfileRound(profile *domain.PlayerProfile, r ProfileRound) (*domain.PlayerProfile, error) {
	if profile == nil {
		profile = &domain.PlayerProfile{
			PlayerHash: r.PlayerHash,
			RoomHash:   r.RoomHash,
			CreatedAt:  r.PlayedAt,
		}
	}

	switch r.Result {
	case resultWin:
		profile.Wins++
	case resultLoss:
		profile.Losses++
	case resultDraw:
		profile.Draws++
	default:
		return nil, fmt.Errorf("unknown rps profile result %q", r.Result)
	}

	profile.RoundsPlayed++
	if r.PlayedAt.After(profile.LastPlayedAt) {
		profile.LastPlayedAt = r.PlayedAt
	}
	profile.UpdatedAt = r.PlayedAt
	if r.Personality != "" {
		profile.PreferredPersonality = r.Personality
	}

	if profile.StreakType == r.Result {
		profile.Streak++
	} else {
		profile.Streak = 1
		profile.StreakType = r.Result
	}
	if r.Result == resultWin && profile.Streak > profile.BestWinStreak {
		profile.BestWinStreak = profile.Streak
	}
	return profile, nil
}

func playerKey(playerHash, roomHash string) string {
	return strings.TrimSpace(playerHash) + "|" + strings.TrimSpace(roomHash)
}
