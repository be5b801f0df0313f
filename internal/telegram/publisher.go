// Package telegram publishes quiz polls through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/quizbot/internal/dispatch"
)

// sender is the part of *tgbotapi.BotAPI the publisher uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Publisher sends polls and messages to one chat or channel.
type Publisher struct {
	api      sender
	self     string
	chatID   int64
	username string
	log      logrus.FieldLogger
}

// Option configures a Publisher.
type Option func(*options)

type options struct {
	client   *http.Client
	endpoint string
	debug    bool
	log      logrus.FieldLogger
}

// WithHTTPClient sets the HTTP client used for Bot API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithEndpoint overrides the Bot API endpoint format, e.g. for a local
// Bot API server. It must contain two %s verbs for token and method.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithDebug turns on Bot API request logging.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// NewPublisher authorises the bot token and targets chatID, which is either
// a numeric chat ID or an "@channel" username.
func NewPublisher(token, chatID string, opts ...Option) (*Publisher, error) {
	o := options{client: http.DefaultClient, endpoint: tgbotapi.APIEndpoint, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	if _, _, err := parseChatID(chatID); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, o.endpoint, o.client)
	if err != nil {
		return nil, fmt.Errorf("telegram: authorise bot: %w", err)
	}
	api.Debug = o.debug

	p, err := newPublisher(api, chatID, o.log)
	if err != nil {
		return nil, err
	}
	p.self = api.Self.UserName
	return p, nil
}

func newPublisher(api sender, chatID string, log logrus.FieldLogger) (*Publisher, error) {
	id, username, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}
	return &Publisher{api: api, chatID: id, username: username, log: log}, nil
}

// parseChatID accepts "-100123", "123" or "@channel".
func parseChatID(s string) (int64, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", errors.New("telegram: empty chat ID")
	}
	if strings.HasPrefix(s, "@") {
		if len(s) == 1 {
			return 0, "", fmt.Errorf("telegram: invalid channel username %q", s)
		}
		return 0, s, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("telegram: chat ID %q is neither numeric nor @username", s)
	}
	return id, "", nil
}

// Self returns the bot's username.
func (p *Publisher) Self() string { return p.self }

func (p *Publisher) baseChat() tgbotapi.BaseChat {
	return tgbotapi.BaseChat{ChatID: p.chatID, ChannelUsername: p.username}
}

// PublishQuiz sends poll as a sendPoll request.
func (p *Publisher) PublishQuiz(ctx context.Context, poll dispatch.Poll) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := tgbotapi.NewPoll(0, poll.Question, poll.Options...)
	cfg.BaseChat = p.baseChat()
	cfg.IsAnonymous = poll.Anonymous
	if poll.Quiz {
		cfg.Type = "quiz"
		cfg.CorrectOptionID = int64(poll.CorrectOptionID)
		cfg.Explanation = poll.Explanation
	}

	msg, err := p.api.Send(cfg)
	if err != nil {
		return fmt.Errorf("telegram: send poll: %w", err)
	}
	p.log.WithFields(logrus.Fields{
		"message_id": msg.MessageID,
		"chat":       p.target(),
	}).Debug("poll sent")
	return nil
}

// SendText sends a plain text message.
func (p *Publisher) SendText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewMessage(0, text)
	cfg.BaseChat = p.baseChat()
	if _, err := p.api.Send(cfg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

func (p *Publisher) target() string {
	if p.username != "" {
		return p.username
	}
	return strconv.FormatInt(p.chatID, 10)
}

var _ dispatch.Publisher = (*Publisher)(nil)
