package session

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/park285/Cheese-RPS-bot/internal/domain"
)

var ErrDuplicateRound = errors.New("rps round already exists")

//go:embed schema.sql
var schemaSQL string

const (
	resultWin  = "win"
	resultLoss = "loss"
	resultDraw = "draw"
)

// ProfileRound is what one finished round adds to a profile.
type ProfileRound struct {
	PlayerHash  string
	RoomHash    string
	Personality string
	Result      string // win, loss, draw
	PlayedAt    time.Time
}

type Repository interface {
	InsertRound(ctx context.Context, round *domain.RoundLog) (int64, error)
	GetRecentRounds(ctx context.Context, playerHash, roomHash string, limit int) ([]*domain.RoundLog, error)
	GetProfile(ctx context.Context, playerHash, roomHash string) (*domain.PlayerProfile, error)
	// AddProfileRound increments the profile in one statement and returns the stored row.
	AddProfileRound(ctx context.Context, r ProfileRound) (*domain.PlayerProfile, error)
	// SetPreferredPersonality returns nil, nil when the player has no profile yet.
	SetPreferredPersonality(ctx context.Context, playerHash, roomHash, personality string) (*domain.PlayerProfile, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Migrate creates the tables when missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply rps schema: %w", err)
	}
	return nil
}

func (r *repository) InsertRound(ctx context.Context, round *domain.RoundLog) (int64, error) {
	if round == nil {
		return 0, fmt.Errorf("nil rps round payload")
	}

	const query = `
		INSERT INTO rps_rounds (
			round_uuid,
			session_uuid,
			player_hash,
			room_hash,
			player_move,
			ai_move,
			winner,
			predicted_move,
			confidence,
			tier,
			personality,
			player_style,
			emotional_state,
			mind_game_event,
			prediction_source,
			followed,
			hesitation_ms,
			model_latency_ms,
			played_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (round_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err := r.db.QueryRowContext(
		ctx,
		query,
		round.RoundUUID,
		round.SessionUUID,
		round.PlayerHash,
		round.RoomHash,
		round.PlayerMove,
		round.AIMove,
		round.Winner,
		round.PredictedMove,
		round.Confidence,
		round.Tier,
		round.Personality,
		round.PlayerStyle,
		round.EmotionalState,
		round.MindGameEvent,
		round.PredictionSource,
		round.Followed,
		round.HesitationMs,
		round.ModelLatency.Milliseconds(),
		round.PlayedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateRound
	}
	if err != nil {
		return 0, fmt.Errorf("insert rps round: %w", err)
	}
	return id.Int64, nil
}

func (r *repository) GetRecentRounds(ctx context.Context, playerHash, roomHash string, limit int) ([]*domain.RoundLog, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT
			id,
			round_uuid,
			session_uuid,
			player_hash,
			room_hash,
			player_move,
			ai_move,
			winner,
			predicted_move,
			confidence,
			tier,
			personality,
			player_style,
			emotional_state,
			mind_game_event,
			prediction_source,
			followed,
			hesitation_ms,
			model_latency_ms,
			played_at
		FROM rps_rounds
		WHERE player_hash = $1 AND room_hash = $2
		ORDER BY played_at DESC, id DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, playerHash, roomHash, limit)
	if err != nil {
		return nil, fmt.Errorf("select rps rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]*domain.RoundLog, 0, limit)
	for rows.Next() {
		var (
			round     domain.RoundLog
			latencyMS sql.NullInt64
		)
		if err := rows.Scan(
			&round.ID,
			&round.RoundUUID,
			&round.SessionUUID,
			&round.PlayerHash,
			&round.RoomHash,
			&round.PlayerMove,
			&round.AIMove,
			&round.Winner,
			&round.PredictedMove,
			&round.Confidence,
			&round.Tier,
			&round.Personality,
			&round.PlayerStyle,
			&round.EmotionalState,
			&round.MindGameEvent,
			&round.PredictionSource,
			&round.Followed,
			&round.HesitationMs,
			&latencyMS,
			&round.PlayedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rps round: %w", err)
		}
		if latencyMS.Valid {
			round.ModelLatency = time.Duration(latencyMS.Int64) * time.Millisecond
		}
		rounds = append(rounds, &round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rps rounds: %w", err)
	}
	return rounds, nil
}

const profileColumns = `
	player_hash,
	room_hash,
	preferred_personality,
	rounds_played,
	wins,
	losses,
	draws,
	streak,
	streak_type,
	best_win_streak,
	last_played_at,
	updated_at,
	created_at`

func scanProfile(row *sql.Row) (*domain.PlayerProfile, error) {
	var profile domain.PlayerProfile
	err := row.Scan(
		&profile.PlayerHash,
		&profile.RoomHash,
		&profile.PreferredPersonality,
		&profile.RoundsPlayed,
		&profile.Wins,
		&profile.Losses,
		&profile.Draws,
		&profile.Streak,
		&profile.StreakType,
		&profile.BestWinStreak,
		&profile.LastPlayedAt,
		&profile.UpdatedAt,
		&profile.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) GetProfile(ctx context.Context, playerHash, roomHash string) (*domain.PlayerProfile, error) {
	query := `SELECT` + profileColumns + `
		FROM rps_profiles
		WHERE player_hash = $1 AND room_hash = $2
		LIMIT 1`

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, playerHash, roomHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select rps profile: %w", err)
	}
	return profile, nil
}

func (r *repository) AddProfileRound(ctx context.Context, pr ProfileRound) (*domain.PlayerProfile, error) {
	switch pr.Result {
	case resultWin, resultLoss, resultDraw:
	default:
		return nil, fmt.Errorf("unknown rps profile result %q", pr.Result)
	}

	// rps_profiles.* in SET refers to the row before the update
	query := `
		INSERT INTO rps_profiles (` + profileColumns + `
		)
		VALUES (
			$1, $2, $3, 1,
			CASE WHEN $4::text = 'win' THEN 1 ELSE 0 END,
			CASE WHEN $4::text = 'loss' THEN 1 ELSE 0 END,
			CASE WHEN $4::text = 'draw' THEN 1 ELSE 0 END,
			1, $4::text,
			CASE WHEN $4::text = 'win' THEN 1 ELSE 0 END,
			$5, NOW(), NOW()
		)
		ON CONFLICT (player_hash, room_hash)
		DO UPDATE SET
			preferred_personality = CASE
				WHEN EXCLUDED.preferred_personality <> '' THEN EXCLUDED.preferred_personality
				ELSE rps_profiles.preferred_personality
			END,
			rounds_played = rps_profiles.rounds_played + 1,
			wins = rps_profiles.wins + EXCLUDED.wins,
			losses = rps_profiles.losses + EXCLUDED.losses,
			draws = rps_profiles.draws + EXCLUDED.draws,
			streak = CASE
				WHEN rps_profiles.streak_type = EXCLUDED.streak_type THEN rps_profiles.streak + 1
				ELSE 1
			END,
			streak_type = EXCLUDED.streak_type,
			best_win_streak = GREATEST(
				rps_profiles.best_win_streak,
				CASE
					WHEN EXCLUDED.streak_type <> 'win' THEN 0
					WHEN rps_profiles.streak_type = 'win' THEN rps_profiles.streak + 1
					ELSE 1
				END
			),
			last_played_at = GREATEST(rps_profiles.last_played_at, EXCLUDED.last_played_at),
			updated_at = NOW()
		RETURNING` + profileColumns

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, pr.PlayerHash, pr.RoomHash, pr.Personality, pr.Result, pr.PlayedAt))
	if err != nil {
		return nil, fmt.Errorf("add rps profile round: %w", err)
	}
	return profile, nil
}

func (r *repository) SetPreferredPersonality(ctx context.Context, playerHash, roomHash, personality string) (*domain.PlayerProfile, error) {
	query := `
		UPDATE rps_profiles
		SET preferred_personality = $3, updated_at = NOW()
		WHERE player_hash = $1 AND room_hash = $2
		RETURNING` + profileColumns

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, playerHash, roomHash, personality))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update rps personality: %w", err)
	}
	return profile, nil
}
