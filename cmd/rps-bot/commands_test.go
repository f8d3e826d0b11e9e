package main

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/adapter/rpspresenter"
	"github.com/park285/Cheese-RPS-bot/internal/domain"
	"github.com/park285/Cheese-RPS-bot/internal/irisfast"
	"github.com/park285/Cheese-RPS-bot/internal/msgcat"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/service/round"
	"github.com/park285/Cheese-RPS-bot/internal/service/session"
)

type fakeSessions struct {
	calls []string
	meta  session.SessionMeta
}

func (f *fakeSessions) Play(_ context.Context, meta session.SessionMeta, move string) (*session.PlayOutcome, error) {
	f.calls = append(f.calls, "play:"+move)
	f.meta = meta
	m, err := rps.ParseMove(move)
	if err != nil {
		return nil, &round.ValidationError{Reason: round.ReasonPlayerMove}
	}
	return &session.PlayOutcome{
		Result:  &round.Result{Round: round.Round{PlayerMove: m}, AIMove: rps.Counter(m), Winner: rps.OutcomeAI, Tier: rps.TierMedium},
		Session: &session.Session{},
	}, nil
}

func (f *fakeSessions) Status(_ context.Context, meta session.SessionMeta) (*session.Session, error) {
	f.calls = append(f.calls, "status")
	return nil, session.ErrSessionNotFound
}

func (f *fakeSessions) SetPersonality(_ context.Context, _ session.SessionMeta, input string) (*session.Session, error) {
	f.calls = append(f.calls, "persona:"+input)
	p, err := rps.ParsePersonality(input)
	if err != nil {
		return nil, &round.ValidationError{Reason: round.ReasonPersonality}
	}
	return &session.Session{Personality: p}, nil
}

func (f *fakeSessions) SetIntent(_ context.Context, _ session.SessionMeta, text string) (*session.Session, error) {
	f.calls = append(f.calls, "intent:"+text)
	return &session.Session{Intent: text}, nil
}

func (f *fakeSessions) Reset(context.Context, session.SessionMeta) error {
	f.calls = append(f.calls, "reset")
	return nil
}

func (f *fakeSessions) History(_ context.Context, _ session.SessionMeta, limit int) ([]*domain.RoundLog, error) {
	f.calls = append(f.calls, "history:"+strings.Repeat("*", limit))
	return nil, nil
}

func (f *fakeSessions) Profile(context.Context, session.SessionMeta) (*domain.PlayerProfile, error) {
	f.calls = append(f.calls, "profile")
	return nil, session.ErrProfileNotFound
}

func newTestBot(t *testing.T) (*bot, *fakeSessions, *[]string) {
	t.Helper()
	cat, err := msgcat.New("ko", "")
	if err != nil {
		t.Fatal(err)
	}
	var sent []string
	fs := &fakeSessions{}
	b := &bot{
		prefix:     "!",
		sessions:   fs,
		difficulty: rps.DefaultDifficulty(),
		presenter: rpspresenter.NewPresenter(func(room, msg string) error {
			sent = append(sent, msg)
			return nil
		}, rpspresenter.NewFormatter(prefixProvider{prefix: "!"}, cat)),
		logger: zap.NewNop(),
	}
	return b, fs, &sent
}

func message(text string) *irisfast.Message {
	sender := "kim"
	return &irisfast.Message{Msg: text, Room: "room1", Sender: &sender}
}

func TestCommandRouting(t *testing.T) {
	b, fs, sent := newTestBot(t)
	ctx := context.Background()

	for _, text := range []string{
		"!rps 바위",
		"!가위바위보 현황",
		"!rps persona coach",
		"!rps 각오 이번엔 이긴다",
		"!rps history 3",
		"!rps 프로필",
		"!rps reset",
		"hello",
		"!chess start",
	} {
		b.handle(ctx, message(text))
	}

	want := []string{"play:바위", "status", "persona:coach", "intent:이번엔 이긴다", "history:***", "profile", "reset"}
	if strings.Join(fs.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls=%v want %v", fs.calls, want)
	}
	if len(*sent) != len(want) {
		t.Fatalf("replies=%d want %d", len(*sent), len(want))
	}
	if fs.meta.Sender != "kim" || fs.meta.SessionID != "room1:kim" {
		t.Fatalf("meta %+v", fs.meta)
	}
	if !strings.Contains((*sent)[0], "✋ 보") {
		t.Fatalf("round reply %q", (*sent)[0])
	}
	if !strings.Contains((*sent)[1], "기록이 없습니다") {
		t.Fatalf("status reply %q", (*sent)[1])
	}
}

func TestInvalidMoveReply(t *testing.T) {
	b, _, sent := newTestBot(t)
	b.handle(context.Background(), message("!rps lizard"))
	if len(*sent) != 1 || !strings.Contains((*sent)[0], "바위, 보, 가위") {
		t.Fatalf("replies %v", *sent)
	}
}

func TestHelp(t *testing.T) {
	b, fs, sent := newTestBot(t)
	b.handle(context.Background(), message("!help"))
	b.handle(context.Background(), message("!rps"))
	if len(fs.calls) != 0 || len(*sent) != 2 || !strings.Contains((*sent)[0], "!rps 현황") {
		t.Fatalf("help replies %v", *sent)
	}
}

func TestUserIDPrefersJSON(t *testing.T) {
	sender := "display"
	msg := &irisfast.Message{Room: "r", Sender: &sender, JSON: &irisfast.MessageJSON{UserID: "42"}}
	if got := userIDFromMessage(msg); got != "42" {
		t.Fatalf("user id %q", got)
	}
}
