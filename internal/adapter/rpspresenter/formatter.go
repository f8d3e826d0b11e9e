package rpspresenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/Cheese-RPS-bot/internal/domain"
	"github.com/park285/Cheese-RPS-bot/internal/msgcat"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/service/round"
	"github.com/park285/Cheese-RPS-bot/internal/service/session"
)

// PrefixProvider supplies the bot command prefix used in help text.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders RPS results as chat text from the message catalog.
type Formatter struct {
	prefix PrefixProvider
	cat    *msgcat.Catalog
}

func NewFormatter(prefix PrefixProvider, cat *msgcat.Catalog) *Formatter {
	return &Formatter{prefix: prefix, cat: cat}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefix == nil {
		return ""
	}
	return f.prefix.Prefix()
}

func (f *Formatter) Help() string {
	return foldSeeMore(f.cat.Text("help", map[string]any{"Prefix": f.Prefix()}, "rps <rock|paper|scissors>"))
}

// Round renders one finished round: moves, outcome, the model's read and the updated record.
func (f *Formatter) Round(out *session.PlayOutcome) string {
	if out == nil || out.Result == nil {
		return ""
	}
	res := out.Result
	pred := res.Prediction

	lines := []string{
		f.cat.Text("round.header", map[string]any{
			"Player": f.move(res.Round.PlayerMove),
			"AI":     f.move(res.AIMove),
			"Winner": f.winner(res.Winner),
		}, fmt.Sprintf("%s vs %s (%s)", res.Round.PlayerMove, res.AIMove, res.Winner)),
	}
	if ev := pred.MindGameEvent; ev != "" && ev != rps.MindGameNone {
		lines = append(lines, f.cat.Text("round.mindgame", map[string]any{"Event": f.label("mindgame", string(ev))}, string(ev)))
	}
	if msg := strings.TrimSpace(pred.Explanation); msg != "" {
		lines = append(lines, f.cat.Text("round.explanation", map[string]any{"Explanation": msg}, msg))
	}
	if tip := strings.TrimSpace(pred.CoachTip); tip != "" {
		lines = append(lines, f.cat.Text("round.tip", map[string]any{"Tip": tip}, tip))
	}

	lines = append(lines, "")
	lines = append(lines, f.cat.Text("round.prediction", map[string]any{
		"Predicted":  f.move(pred.PredictedMove),
		"Confidence": pred.Confidence,
		"Tier":       f.label("tier", string(res.Tier)),
	}, ""))
	if style := strings.TrimSpace(pred.PlayerStyle); style != "" {
		lines = append(lines, f.cat.Text("round.style", map[string]any{"Style": style}, ""))
	}
	if out.Session != nil {
		lines = append(lines, f.statsLine("round.stats", out.Session.Stats))
	}
	return joinNonEmptyTail(lines)
}

// Status renders the live session record; tier is what the next round will use.
func (f *Formatter) Status(sess *session.Session, tier rps.Tier) string {
	if sess == nil {
		return f.StatusEmpty()
	}
	st := sess.Stats
	lines := []string{
		f.cat.Text("status.header", nil, ""),
		f.cat.Text("status.body", map[string]any{
			"Personality": f.personality(sess.Personality),
			"Tier":        f.label("tier", string(tier)),
			"Wins":        st.Wins,
			"Losses":      st.Losses,
			"Draws":       st.Draws,
			"Rounds":      st.Rounds(),
			"WinStreak":   st.WinStreak,
			"LoseStreak":  st.LoseStreak,
		}, ""),
	}
	if intent := strings.TrimSpace(sess.Intent); intent != "" {
		lines = append(lines, f.cat.Text("status.intent", map[string]any{"Intent": intent}, ""))
	}
	return joinNonEmptyTail(lines)
}

func (f *Formatter) StatusEmpty() string {
	return f.cat.Text("status.empty", map[string]any{"Prefix": f.Prefix()}, "No game yet.")
}

func (f *Formatter) Profile(p *domain.PlayerProfile) string {
	if p == nil || p.RoundsPlayed == 0 {
		return f.cat.Text("profile.empty", nil, "No profile.")
	}
	winRate := 0
	if p.RoundsPlayed > 0 {
		winRate = p.Wins * 100 / p.RoundsPlayed
	}
	return joinNonEmptyTail([]string{
		f.cat.Text("profile.header", nil, ""),
		f.cat.Text("profile.body", map[string]any{
			"Rounds":        p.RoundsPlayed,
			"Wins":          p.Wins,
			"Losses":        p.Losses,
			"Draws":         p.Draws,
			"WinRate":       winRate,
			"BestWinStreak": p.BestWinStreak,
			"Streak":        f.streak(p.StreakType, p.Streak),
		}, ""),
	})
}

// History lists persisted rounds, newest first.
func (f *Formatter) History(rounds []*domain.RoundLog) string {
	if len(rounds) == 0 {
		return f.cat.Text("history.empty", nil, "No rounds.")
	}
	lines := []string{f.cat.Text("history.header", nil, "")}
	for i, r := range rounds {
		if r == nil {
			continue
		}
		lines = append(lines, f.cat.Text("history.line", map[string]any{
			"Index":  i + 1,
			"Player": f.move(rps.Move(r.PlayerMove)),
			"AI":     f.move(rps.Move(r.AIMove)),
			"Winner": f.winner(rps.Outcome(r.Winner)),
		}, fmt.Sprintf("%d. %s vs %s", i+1, r.PlayerMove, r.AIMove)))
	}
	return foldSeeMore(joinNonEmptyTail(lines))
}

func (f *Formatter) PersonalitySet(sess *session.Session) string {
	p := rps.Friendly
	if sess != nil && sess.Personality != "" {
		p = sess.Personality
	}
	return f.cat.Text("personality_set", map[string]any{"Personality": f.personality(p)}, string(p))
}

func (f *Formatter) IntentSet(sess *session.Session) string {
	if sess == nil || strings.TrimSpace(sess.Intent) == "" {
		return f.cat.Text("intent_cleared", nil, "")
	}
	return f.cat.Text("intent_set", map[string]any{"Intent": sess.Intent}, sess.Intent)
}

func (f *Formatter) Reset() string {
	return f.cat.Text("reset", nil, "reset")
}

// Error maps service errors to user-facing text. Unknown errors get the generic line.
func (f *Formatter) Error(err error) string {
	var ve *round.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		switch ve.Reason {
		case round.ReasonPlayerMove:
			return f.cat.Text("error.invalid_move", nil, ve.Reason)
		case round.ReasonPersonality:
			return f.cat.Text("error.invalid_personality", nil, ve.Reason)
		case round.ReasonOnboarding:
			return f.cat.Text("error.invalid_intent", nil, ve.Reason)
		}
		return ve.Reason
	case errors.Is(err, session.ErrRoomNotAllowed):
		return f.cat.Text("error.room_not_allowed", nil, "")
	case errors.Is(err, session.ErrSessionBusy):
		return f.cat.Text("error.busy", nil, "")
	case errors.Is(err, session.ErrSessionNotFound):
		return f.StatusEmpty()
	case errors.Is(err, session.ErrProfileNotFound):
		return f.cat.Text("profile.empty", nil, "")
	}
	return f.cat.Text("error.generic", nil, "error")
}

func (f *Formatter) move(m rps.Move) string {
	return f.label("move", string(m))
}

func (f *Formatter) winner(o rps.Outcome) string {
	return f.label("winner", string(o))
}

func (f *Formatter) personality(p rps.Personality) string {
	if p == "" {
		p = rps.Friendly
	}
	return f.label("personality", string(p))
}

func (f *Formatter) streak(kind string, n int) string {
	if n <= 0 || kind == "" {
		return f.cat.Text("streak.none", nil, "-")
	}
	return f.cat.Text("streak."+kind, map[string]any{"N": n}, fmt.Sprintf("%d %s", n, kind))
}

// label looks up group.value, falling back to the raw value.
func (f *Formatter) label(group, value string) string {
	if value == "" {
		return ""
	}
	return f.cat.Text(group+"."+value, nil, value)
}

func (f *Formatter) statsLine(key string, st rps.Stats) string {
	return f.cat.Text(key, map[string]any{
		"Wins":       st.Wins,
		"Losses":     st.Losses,
		"Draws":      st.Draws,
		"WinStreak":  st.WinStreak,
		"LoseStreak": st.LoseStreak,
	}, "")
}

// collapse repeated blank lines and trim the tail
func joinNonEmptyTail(lines []string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, l)
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}
