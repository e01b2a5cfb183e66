package bot

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"plugbot/events"
	"plugbot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token           string
	GuildID         string
	ResidentRoleID  string
	MirrorChannelID string
	MirrorEnabled   bool
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	eventBus *events.Bus

	scoreService    service.ScoreService
	roulette        service.GameService
	russianRoulette service.GameService
	giveawayService service.GiveawayService
}

// New opens the Discord session. Services are attached afterwards, because
// the score service needs the bot as its guild role mirror.
func New(config Config, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	bot := &Bot{
		config:   config,
		session:  dg,
		eventBus: eventBus,
	}

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if config.MirrorEnabled {
		bot.subscribeMirror()
		log.Info("Event mirroring to Discord enabled")
	}

	return bot, nil
}

// AttachServices wires the game and score services and registers the slash
// commands that drive them.
func (b *Bot) AttachServices(scoreService service.ScoreService, roulette, russianRoulette service.GameService, giveawayService service.GiveawayService) error {
	b.scoreService = scoreService
	b.roulette = roulette
	b.russianRoulette = russianRoulette
	b.giveawayService = giveawayService

	b.session.AddHandler(b.handleCommands)

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("error registering commands: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// GrantResidentRole mirrors a resident promotion onto the linked guild member
func (b *Bot) GrantResidentRole(discordID string) error {
	if b.config.ResidentRoleID == "" {
		return nil
	}
	return b.session.GuildMemberRoleAdd(b.config.GuildID, discordID, b.config.ResidentRoleID)
}

// RevokeResidentRole mirrors a resident demotion onto the linked guild member
func (b *Bot) RevokeResidentRole(discordID string) error {
	if b.config.ResidentRoleID == "" {
		return nil
	}
	return b.session.GuildMemberRoleRemove(b.config.GuildID, discordID, b.config.ResidentRoleID)
}
