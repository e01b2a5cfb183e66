package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"plugbot/events"

	"github.com/bwmarrin/discordgo"
)

// subscribeMirror posts an embed to the mirror channel for every event the
// core emits, so moderators can follow room activity from Discord.
func (b *Bot) subscribeMirror() {
	mirror := func(ctx context.Context, event events.Event) {
		embed := buildEventEmbed(event)
		if embed == nil {
			return
		}
		if _, err := b.session.ChannelMessageSendEmbed(b.config.MirrorChannelID, embed); err != nil {
			log.WithField("eventType", event.Type()).Errorf("Failed to mirror event: %v", err)
		}
	}

	for _, eventType := range []events.EventType{
		events.EventTypeRoleChanged,
		events.EventTypeSessionStarted,
		events.EventTypeRouletteWinner,
		events.EventTypeRussianRouletteShot,
		events.EventTypeHolidayBonus,
		events.EventTypeGiveawayWinner,
	} {
		b.eventBus.Subscribe(eventType, mirror)
	}
}

func buildEventEmbed(event events.Event) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Timestamp: time.Now().Format(time.RFC3339),
	}

	switch e := event.(type) {
	case events.RoleChangedEvent:
		embed.Title = "Reputation update"
		embed.Color = 0x5865F2
		embed.Description = fmt.Sprintf("%s: %s (score %.2f)", e.Username, e.Decision, e.Score)
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "User ID", Value: fmt.Sprint(e.UserID), Inline: true},
			{Name: "Role", Value: fmt.Sprintf("%d -> %d", e.OldRole, e.NewRole), Inline: true},
		}

	case events.SessionStartedEvent:
		embed.Title = "Game session started"
		embed.Color = 0x57F287
		embed.Description = fmt.Sprintf("%s, entry window %ds", e.Kind, e.Duration)

	case events.RouletteWinnerEvent:
		embed.Title = "Roulette winner"
		embed.Color = 0xFEE75C
		embed.Description = fmt.Sprintf("%s moves to waitlist position %d (%d entrants)", e.Username, e.Position, e.Entrants)

	case events.RussianRouletteShotEvent:
		embed.Title = "Russian roulette"
		embed.Color = 0xED4245
		if e.Lucky {
			embed.Description = fmt.Sprintf("%s got lucky and moves to position %d", e.Username, e.Position)
		} else if e.Position >= 0 {
			embed.Description = fmt.Sprintf("%s got shot back to position %d", e.Username, e.Position)
		} else {
			embed.Description = fmt.Sprintf("%s got shot and muted", e.Username)
		}

	case events.HolidayBonusEvent:
		embed.Title = "Weekend bonus"
		embed.Color = 0xEB459E
		embed.Description = fmt.Sprintf("%s won %d candy", e.Username, e.Amount)

	case events.GiveawayWinnerEvent:
		embed.Title = "Giveaway"
		embed.Color = 0xFEE75C
		embed.Description = fmt.Sprintf("Winner %d - %s", e.Ordinal, e.Username)

	default:
		return nil
	}

	return embed
}
