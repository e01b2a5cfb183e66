package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"plugbot/service"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	gameOptions := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "start",
			Description: "Open a session for entries",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Entry window in seconds",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "price",
					Description: "Advisory entry price",
					Required:    false,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "add",
			Description: "Enter a room user into the running session",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "userid",
					Description: "Room user id",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "end",
			Description: "Abort the running session",
		},
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "roulette",
			Description: "Waitlist roulette",
			Options:     gameOptions,
		},
		{
			Name:        "russianroulette",
			Description: "Russian roulette",
			Options:     gameOptions,
		},
		{
			Name:        "score",
			Description: "Re-evaluate a user's reputation score",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "userid",
					Description: "Room user id",
					Required:    true,
				},
			},
		},
		{
			Name:        "giveaway",
			Description: "Draw giveaway winners from ticket holders",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "winners",
					Description: "Number of winners to draw",
					Required:    true,
				},
			},
		},
		{
			Name:        "ticket",
			Description: "Grant or revoke a user's giveaway ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "userid",
					Description: "Room user id",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "held",
					Description: "Whether the user holds a ticket",
					Required:    true,
				},
			},
		},
	}

	for _, command := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, command); err != nil {
			return fmt.Errorf("failed to register command %s: %w", command.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	ctx := context.Background()

	switch data.Name {
	case "roulette":
		b.handleGame(ctx, s, i, b.roulette)
	case "russianroulette":
		b.handleGame(ctx, s, i, b.russianRoulette)
	case "score":
		b.handleScore(ctx, s, i)
	case "giveaway":
		b.handleGiveaway(ctx, s, i)
	case "ticket":
		b.handleTicket(ctx, s, i)
	}
}

func (b *Bot) handleGame(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, game service.GameService) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "start":
		duration := time.Duration(sub.Options[0].IntValue()) * time.Second
		var price int64
		if len(sub.Options) > 1 {
			price = sub.Options[1].IntValue()
		}

		if err := game.Start(ctx, duration, price); err != nil {
			if err == service.ErrSessionActive {
				respond(s, i, "A session is already running or cooling down.")
				return
			}
			log.Errorf("Failed to start game session: %v", err)
			respond(s, i, "Could not start the session.")
			return
		}
		respond(s, i, fmt.Sprintf("Session open for %s, entries are now accepted!", duration))

	case "add":
		userID := sub.Options[0].IntValue()
		if game.Add(userID) {
			respond(s, i, fmt.Sprintf("User %d is in!", userID))
		} else {
			respond(s, i, "No session running, or that user already joined.")
		}

	case "end":
		game.End()
		respond(s, i, "Session ended.")
	}
}

func (b *Bot) handleScore(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	userID := data.Options[0].IntValue()

	result, err := b.scoreService.EvaluateUser(ctx, userID)
	if err != nil {
		log.Errorf("Failed to evaluate user %d: %v", userID, err)
		respond(s, i, "Evaluation failed.")
		return
	}

	respond(s, i, fmt.Sprintf("User %d scored %.2f (%s)", result.UserID, result.Score, result.Decision))
}

func (b *Bot) handleGiveaway(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	winners := int(data.Options[0].IntValue())

	respond(s, i, fmt.Sprintf("Drawing %d winner(s)...", winners))

	// The draw paces its announcements, so it runs off the interaction path.
	go func() {
		if err := b.giveawayService.Draw(context.Background(), winners); err != nil {
			log.Errorf("Giveaway draw failed: %v", err)
		}
	}()
}

func (b *Bot) handleTicket(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	userID := data.Options[0].IntValue()
	held := data.Options[1].BoolValue()

	if err := b.giveawayService.SetTicket(ctx, userID, held); err != nil {
		log.Errorf("Failed to set ticket for user %d: %v", userID, err)
		respond(s, i, "Could not update the ticket.")
		return
	}

	if held {
		respond(s, i, fmt.Sprintf("User %d now holds a giveaway ticket.", userID))
	} else {
		respond(s, i, fmt.Sprintf("User %d's giveaway ticket was revoked.", userID))
	}
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: message},
	})
	if err != nil {
		log.Errorf("Failed to respond to interaction: %v", err)
	}
}
