package rpspresenter

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/park285/Cheese-RPS-bot/internal/domain"
	"github.com/park285/Cheese-RPS-bot/internal/msgcat"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/service/round"
	"github.com/park285/Cheese-RPS-bot/internal/service/session"
)

type fixedPrefix string

func (p fixedPrefix) Prefix() string { return string(p) }

func newFormatter(t *testing.T, locale string) *Formatter {
	t.Helper()
	cat, err := msgcat.New(locale, "")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	return NewFormatter(fixedPrefix("!"), cat)
}

func sampleOutcome(event rps.MindGameEvent) *session.PlayOutcome {
	return &session.PlayOutcome{
		Result: &round.Result{
			Round: round.Round{PlayerMove: rps.Rock},
			Tier:  rps.TierHard,
			Prediction: rps.Prediction{
				PredictedMove: rps.Rock,
				Confidence:    72,
				PlayerStyle:   "rock-biased",
				Explanation:   "You love rock.",
				CoachTip:      "Try paper.",
				MindGameEvent: event,
			},
			AIMove: rps.Paper,
			Winner: rps.OutcomeAI,
		},
		Session: &session.Session{Stats: rps.Stats{Wins: 2, Losses: 1, LoseStreak: 1}},
	}
}

func TestRoundKorean(t *testing.T) {
	f := newFormatter(t, "ko")
	got := f.Round(sampleOutcome(rps.MindGameNone))
	for _, want := range []string{"✊ 바위 vs ✋ 보", "😈 패배", "72%", "어려움", "You love rock.", "💡 Try paper.", "2승 1패 0무"} {
		if !strings.Contains(got, want) {
			t.Fatalf("round text missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "🃏") || strings.Contains(got, "none") {
		t.Fatalf("mind-game banner shown for none:\n%s", got)
	}
}

func TestRoundMindGameBanner(t *testing.T) {
	f := newFormatter(t, "ko")
	got := f.Round(sampleOutcome(rps.MindGameBluffRound))
	if !strings.Contains(got, "🃏 블러핑 라운드") {
		t.Fatalf("banner missing:\n%s", got)
	}
}

func TestRoundEnglish(t *testing.T) {
	f := newFormatter(t, "en")
	got := f.Round(sampleOutcome(rps.MindGameNone))
	if !strings.Contains(got, "✊ Rock vs ✋ Paper") || !strings.Contains(got, "Difficulty: hard") {
		t.Fatalf("english round text:\n%s", got)
	}
}

func TestStatusAndEmpty(t *testing.T) {
	f := newFormatter(t, "ko")
	sess := &session.Session{Personality: rps.Coach, Intent: "이번엔 이긴다", Stats: rps.Stats{Wins: 1, Draws: 1}}
	got := f.Status(sess, rps.TierMedium)
	for _, want := range []string{"코치", "보통", "(2판)", "이번엔 이긴다"} {
		if !strings.Contains(got, want) {
			t.Fatalf("status missing %q:\n%s", want, got)
		}
	}
	if got := f.Status(nil, rps.TierMedium); !strings.Contains(got, "!rps 바위") {
		t.Fatalf("empty status: %q", got)
	}
}

func TestProfileAndHistory(t *testing.T) {
	f := newFormatter(t, "ko")
	p := &domain.PlayerProfile{RoundsPlayed: 4, Wins: 3, Losses: 1, Streak: 2, StreakType: "win", BestWinStreak: 2}
	got := f.Profile(p)
	if !strings.Contains(got, "승률 75%") || !strings.Contains(got, "2연승") {
		t.Fatalf("profile text:\n%s", got)
	}
	if got := f.Profile(nil); !strings.Contains(got, "프로필이 없습니다") {
		t.Fatalf("empty profile: %q", got)
	}

	h := f.History([]*domain.RoundLog{{PlayerMove: "rock", AIMove: "scissors", Winner: "player"}})
	if !strings.Contains(h, "1. ✊ 바위 vs ✌️ 가위 → 🎉 승리!") {
		t.Fatalf("history text:\n%s", h)
	}
}

func TestErrorMapping(t *testing.T) {
	f := newFormatter(t, "ko")
	cases := []struct {
		err  error
		want string
	}{
		{&round.ValidationError{Reason: round.ReasonPlayerMove}, "바위, 보, 가위"},
		{fmt.Errorf("wrap: %w", session.ErrRoomNotAllowed), "사용할 수 없습니다"},
		{session.ErrSessionNotFound, "기록이 없습니다"},
		{session.ErrSessionBusy, "진행 중"},
		{errors.New("boom"), "오류가 발생했습니다"},
	}
	for _, tc := range cases {
		if got := f.Error(tc.err); !strings.Contains(got, tc.want) {
			t.Fatalf("Error(%v)=%q want %q", tc.err, got, tc.want)
		}
	}
}

func TestPresenterDropsBlank(t *testing.T) {
	var sent []string
	p := NewPresenter(func(room, msg string) error {
		sent = append(sent, room+":"+msg)
		return nil
	}, newFormatter(t, "ko"))
	if err := p.Text("r", "   "); err != nil {
		t.Fatal(err)
	}
	if err := p.Round("r", sampleOutcome(rps.MindGameNone)); err != nil {
		t.Fatal(err)
	}
	if len(sent) != 1 || !strings.HasPrefix(sent[0], "r:") {
		t.Fatalf("sent=%v", sent)
	}
}

func TestLongHistoryFolded(t *testing.T) {
	f := newFormatter(t, "ko")
	rows := make([]*domain.RoundLog, 5)
	for i := range rows {
		rows[i] = &domain.RoundLog{PlayerMove: "rock", AIMove: "paper", Winner: "ai"}
	}
	got := f.History(rows)
	header, rest, _ := strings.Cut(got, "\n")
	if !strings.HasPrefix(header, "📜") || !strings.HasSuffix(header, zeroWidthSpace) {
		t.Fatalf("header not padded: %q", header[:20])
	}
	if strings.Count(rest, "\n") != 4 {
		t.Fatalf("body lines changed:\n%s", rest)
	}
	if short := foldSeeMore("a\nb"); short != "a\nb" {
		t.Fatalf("short text folded: %q", short)
	}
}
