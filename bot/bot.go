// Package bot plays clinicquest over Discord. Every chat user gets their
// own protagonist; messages starting with the command prefix are game
// commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nathoo/clinicquest/engine"
	"github.com/nathoo/clinicquest/engine/store"
	"github.com/nathoo/clinicquest/types"
)

// maxMessageLen is Discord's message length limit.
const maxMessageLen = 2000

// Config holds Discord bot configuration.
type Config struct {
	Token  string
	Prefix string // defaults to "!"
}

// Sender posts a message to a channel. *discordgo.Session satisfies it.
type Sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot routes chat messages to the engine.
type Bot struct {
	session *discordgo.Session
	engine  *engine.Engine
	log     *zap.Logger
	prefix  string
}

// New creates a Bot. The gateway connection is opened by Run.
func New(cfg Config, eng *engine.Engine, logger *zap.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("bot: discord token is required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("bot: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	b := newBot(eng, logger, cfg.Prefix)
	b.session = session
	return b, nil
}

func newBot(eng *engine.Engine, logger *zap.Logger, prefix string) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = "!"
	}
	return &Bot{engine: eng, log: logger, prefix: prefix}
}

// Run connects to Discord and serves messages until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	remove := b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		b.handle(ctx, s, m.Message)
	})
	defer remove()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("bot: open session: %w", err)
	}
	b.log.Info("discord bot connected", zap.String("prefix", b.prefix))

	<-ctx.Done()
	if err := b.session.Close(); err != nil {
		b.log.Warn("discord: close session", zap.Error(err))
	}
	b.log.Info("discord bot closed")
	return ctx.Err()
}

// handle answers one chat message.
func (b *Bot) handle(ctx context.Context, send Sender, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	input, ok := strings.CutPrefix(strings.TrimSpace(m.Content), b.prefix)
	if !ok {
		return
	}

	lines, err := b.Reply(ctx, m.Author.ID, m.Author.Username, input)
	if err != nil {
		b.log.Error("discord command failed",
			zap.String("user", m.Author.ID),
			zap.String("input", input),
			zap.Error(err))
		lines = []string{"Something went wrong. Try again later."}
	}
	for _, chunk := range chunks(lines, maxMessageLen) {
		if _, err := send.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			b.log.Warn("discord: send message", zap.String("channel", m.ChannelID), zap.Error(err))
			return
		}
	}
}

// Reply runs one command for a chat user and returns the lines to post.
func (b *Bot) Reply(ctx context.Context, userID, userName, input string) ([]string, error) {
	input = strings.TrimSpace(input)
	pid := protagonist(userID)

	switch strings.ToLower(input) {
	case "start":
		_, res, err := b.engine.Start(ctx, pid, userName)
		if errors.Is(err, store.ErrDuplicateID) {
			return []string{"You are already in the clinic. Type " + b.prefix + "look to look around."}, nil
		}
		if err != nil {
			return nil, err
		}
		b.log.Info("discord player started", zap.String("user", userID), zap.String("protagonist", pid))
		return res.Output, nil
	case "help", "":
		return b.help(), nil
	}

	res, err := b.engine.Step(ctx, pid, input)
	if errors.Is(err, types.ErrNotFound) {
		return []string{"You haven't started yet. Type " + b.prefix + "start to begin."}, nil
	}
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// protagonist maps a chat user to a protagonist ID. The mapping is
// stable, so persisted protagonists survive a bot restart.
func protagonist(userID string) string {
	return "discord-" + userID
}

func (b *Bot) help() []string {
	p := b.prefix
	return []string{
		"Commands:",
		p + "start: begin your visit to the clinic",
		p + "look, " + p + "go <place>, " + p + "talk <npc>, " + p + "attack <enemy>",
		p + "take <item>, " + p + "use <item> [on <enemy>], " + p + "inventory, " + p + "stats",
		p + "quests, " + p + "accept <quest>, " + p + "turn in <quest>",
	}
}

// chunks joins lines into messages of at most limit characters. Lines
// longer than limit are split, preferably at a space.
func chunks(lines []string, limit int) []string {
	var out, cur []string
	n := 0
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.Join(cur, "\n"))
			cur, n = nil, 0
		}
	}
	for _, line := range lines {
		for _, piece := range splitLine(line, limit) {
			size := utf8.RuneCountInString(piece)
			if len(cur) > 0 && n+1+size > limit {
				flush()
			}
			if len(cur) > 0 {
				n++
			}
			cur = append(cur, piece)
			n += size
		}
	}
	flush()
	return out
}

// splitLine cuts line into pieces of at most limit runes.
func splitLine(line string, limit int) []string {
	r := []rune(line)
	var pieces []string
	for len(r) > limit {
		cut := limit
		for i := limit; i > 0; i-- {
			if r[i] == ' ' {
				cut = i
				break
			}
		}
		pieces = append(pieces, string(r[:cut]))
		r = r[cut:]
		if r[0] == ' ' {
			r = r[1:]
		}
	}
	return append(pieces, string(r))
}
