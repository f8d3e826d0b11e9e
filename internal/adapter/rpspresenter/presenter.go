package rpspresenter

import (
	"strings"

	"github.com/park285/Cheese-RPS-bot/internal/service/session"
)

// Presenter delivers formatted text without coupling to the command layer.
type Presenter struct {
	sendMessage func(room, message string) error
	format      *Formatter
}

func NewPresenter(sendMessage func(room, message string) error, format *Formatter) *Presenter {
	return &Presenter{sendMessage: sendMessage, format: format}
}

func (p *Presenter) Formatter() *Formatter { return p.format }

// Text sends message to room; blank messages are dropped.
func (p *Presenter) Text(room, message string) error {
	if p == nil || p.sendMessage == nil {
		return nil
	}
	if strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(room, message)
}

func (p *Presenter) Round(room string, out *session.PlayOutcome) error {
	return p.Text(room, p.format.Round(out))
}

func (p *Presenter) Error(room string, err error) error {
	return p.Text(room, p.format.Error(err))
}
