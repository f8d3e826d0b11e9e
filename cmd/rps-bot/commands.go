package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/adapter/rpspresenter"
	"github.com/park285/Cheese-RPS-bot/internal/domain"
	"github.com/park285/Cheese-RPS-bot/internal/irisfast"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/service/session"
)

// sessions is the slice of session.Service the chat commands use.
type sessions interface {
	Play(ctx context.Context, meta session.SessionMeta, move string) (*session.PlayOutcome, error)
	Status(ctx context.Context, meta session.SessionMeta) (*session.Session, error)
	SetPersonality(ctx context.Context, meta session.SessionMeta, input string) (*session.Session, error)
	SetIntent(ctx context.Context, meta session.SessionMeta, text string) (*session.Session, error)
	Reset(ctx context.Context, meta session.SessionMeta) error
	History(ctx context.Context, meta session.SessionMeta, limit int) ([]*domain.RoundLog, error)
	Profile(ctx context.Context, meta session.SessionMeta) (*domain.PlayerProfile, error)
}

type bot struct {
	prefix     string
	sessions   sessions
	difficulty rps.DifficultyPolicy
	presenter  *rpspresenter.Presenter
	logger     *zap.Logger
}

const defaultHistoryRows = 10

func (b *bot) handle(ctx context.Context, msg *irisfast.Message) {
	if msg == nil {
		return
	}
	text := strings.TrimSpace(msg.Msg)
	if text == "" || b.prefix == "" || !strings.HasPrefix(text, b.prefix) {
		return
	}
	parts := strings.Fields(strings.TrimPrefix(text, b.prefix))
	if len(parts) == 0 {
		return
	}

	switch strings.ToLower(parts[0]) {
	case "help", "도움말":
		b.reply(msg.Room, b.presenter.Formatter().Help())
	case "rps", "가위바위보":
		b.handleRPS(ctx, msg, parts[1:])
	}
}

func (b *bot) handleRPS(ctx context.Context, msg *irisfast.Message, args []string) {
	f := b.presenter.Formatter()
	if len(args) == 0 {
		b.reply(msg.Room, f.Help())
		return
	}
	meta := metaFor(msg)
	sub := strings.ToLower(args[0])
	rest := args[1:]

	var (
		out string
		err error
	)
	switch sub {
	case "status", "현황":
		var sess *session.Session
		if sess, err = b.sessions.Status(ctx, meta); err == nil {
			out = f.Status(sess, b.difficulty.Tier(sess.Stats.WinStreak, sess.Stats.LoseStreak))
		}
	case "persona", "성격":
		if len(rest) == 0 {
			out = f.Help()
			break
		}
		var sess *session.Session
		if sess, err = b.sessions.SetPersonality(ctx, meta, rest[0]); err == nil {
			out = f.PersonalitySet(sess)
		}
	case "intent", "각오":
		var sess *session.Session
		if sess, err = b.sessions.SetIntent(ctx, meta, strings.Join(rest, " ")); err == nil {
			out = f.IntentSet(sess)
		}
	case "history", "기록":
		limit := defaultHistoryRows
		if len(rest) > 0 {
			if n, perr := strconv.Atoi(rest[0]); perr == nil && n > 0 {
				limit = n
			}
		}
		var rounds []*domain.RoundLog
		if rounds, err = b.sessions.History(ctx, meta, limit); err == nil {
			out = f.History(rounds)
		}
	case "profile", "프로필":
		var p *domain.PlayerProfile
		if p, err = b.sessions.Profile(ctx, meta); err == nil {
			out = f.Profile(p)
		}
	case "reset", "초기화":
		if err = b.sessions.Reset(ctx, meta); err == nil {
			out = f.Reset()
		}
	default:
		var res *session.PlayOutcome
		if res, err = b.sessions.Play(ctx, meta, sub); err == nil {
			out = f.Round(res)
		}
	}

	if err != nil {
		b.logger.Warn("rps_command_failed",
			zap.String("command", sub),
			zap.String("room", msg.Room),
			zap.Error(err),
		)
		out = f.Error(err)
	}
	b.reply(msg.Room, out)
}

func (b *bot) reply(room, text string) {
	if err := b.presenter.Text(room, text); err != nil {
		b.logger.Warn("iris_reply_failed", zap.String("room", room), zap.Error(err))
	}
}

func metaFor(msg *irisfast.Message) session.SessionMeta {
	uid := userIDFromMessage(msg)
	return session.SessionMeta{
		SessionID: fmt.Sprintf("%s:%s", strings.TrimSpace(msg.Room), uid),
		Room:      msg.Room,
		Sender:    uid,
	}
}

func userIDFromMessage(msg *irisfast.Message) string {
	if msg.JSON != nil && strings.TrimSpace(msg.JSON.UserID) != "" {
		return strings.TrimSpace(msg.JSON.UserID)
	}
	if msg.Sender != nil && strings.TrimSpace(*msg.Sender) != "" {
		return strings.TrimSpace(*msg.Sender)
	}
	return "player"
}
