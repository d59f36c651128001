package discord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"playpal/internal/models"
	"playpal/pkg/utils"
)

const (
	leaderboardLimit = 10
	shopPageSize     = 5

	colorGold    = 0xF1C40F
	colorBlurple = 0x5865F2
	colorGreen   = 0x2ECC71
)

// shopCatalog is the static shop inventory. Purchasing is not implemented;
// the catalog is display-only.
var shopCatalog = []models.ShopItem{
	{Name: "VIP Role", Price: 100},
	{Name: "Colored Nickname", Price: 50},
	{Name: "Exclusive Emoji", Price: 200},
	{Name: "Activist Medal", Price: 300},
	{Name: "Profile Background", Price: 150},
	{Name: "Background: Galaxy", Price: 500},
	{Name: "Background: Cyberpunk", Price: 500},
}

var commands = []*discordgo.ApplicationCommand{
	{Name: "leaderboard", Description: "Show the server leaderboard"},
	{Name: "me", Description: "Show your profile"},
	{Name: "shop", Description: "Open the shop"},
	{Name: "achievements", Description: "Show your achievements"},
}

// registerCommands registers the slash command surface
func (b *Bot) registerCommands() error {
	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
	}
	return nil
}

// interactionCreate dispatches slash commands and button presses
func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "leaderboard":
			b.handleLeaderboard(s, i)
		case "me":
			b.handleProfile(s, i)
		case "shop":
			b.handleShop(s, i)
		case "achievements":
			b.handleAchievements(s, i)
		}
	case discordgo.InteractionMessageComponent:
		b.handleComponent(s, i)
	}
}

func (b *Bot) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	switch {
	case customID == "leaderboard:streak" || customID == "leaderboard:points":
		scope := strings.TrimPrefix(customID, "leaderboard:")
		embed, err := b.leaderboardEmbed(i.GuildID, scope)
		if err != nil {
			b.reportError(err, "leaderboard component")
			return
		}
		b.updateMessage(s, i, embed, leaderboardComponents(scope))
	default:
		if page, ok := shopPageFromCustomID(customID); ok {
			b.updateMessage(s, i, shopEmbed(shopCatalog, page), shopComponents(shopCatalog, page))
		}
	}
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed, err := b.leaderboardEmbed(i.GuildID, "streak")
	if err != nil {
		b.reportError(err, "leaderboard command")
		return
	}
	b.respond(s, i, embed, leaderboardComponents("streak"))
}

func (b *Bot) leaderboardEmbed(guildID, scope string) (*discordgo.MessageEmbed, error) {
	entries, err := b.repo.Leaderboard(guildID, scope, leaderboardLimit)
	if err != nil {
		return nil, err
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 Server Leaderboard (%s)", scope),
		Color: colorGold,
	}
	if len(entries) == 0 {
		embed.Description = "No activity recorded yet."
		return embed, nil
	}

	for rank, entry := range entries {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   utils.FormatRank(rank + 1),
			Value:  utils.FormatLeaderboardEntry(entry.UserID, entry.Streak, entry.Points),
			Inline: false,
		})
	}
	return embed, nil
}

func leaderboardComponents(scope string) []discordgo.MessageComponent {
	streakStyle := discordgo.PrimaryButton
	pointsStyle := discordgo.SecondaryButton
	if scope == "points" {
		streakStyle, pointsStyle = pointsStyle, streakStyle
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Streaks", Style: streakStyle, CustomID: "leaderboard:streak"},
				discordgo.Button{Label: "Points", Style: pointsStyle, CustomID: "leaderboard:points"},
			},
		},
	}
}

func (b *Bot) handleProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := i.Member.User

	profile, err := b.repo.Profile(user.ID, i.GuildID)
	if err != nil {
		b.reportError(err, "profile command")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("👤 Profile: %s", user.Username),
		Color: colorBlurple,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL(""),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔥 Streak", Value: strconv.Itoa(profile.Streak), Inline: true},
			{Name: "💰 Points", Value: fmt.Sprintf("%.2f", profile.Points), Inline: true},
			{Name: "⭐ XP", Value: strconv.Itoa(profile.XP), Inline: true},
			{Name: "🎙️ Voice Time", Value: utils.FormatMinutes(profile.VoiceMinutes), Inline: true},
		},
	}
	b.respond(s, i, embed, nil)
}

func (b *Bot) handleShop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.respond(s, i, shopEmbed(shopCatalog, 0), shopComponents(shopCatalog, 0))
}

func shopEmbed(items []models.ShopItem, page int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "🛒 Shop",
		Description: fmt.Sprintf("Page %d", page+1),
		Color:       colorGreen,
	}
	for _, item := range shopPage(items, page) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   item.Name,
			Value:  fmt.Sprintf("💰 %.0f points", item.Price),
			Inline: false,
		})
	}
	return embed
}

// shopPage returns the items visible on the given zero-based page
func shopPage(items []models.ShopItem, page int) []models.ShopItem {
	start := page * shopPageSize
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + shopPageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// shopComponents builds the pager row; the back button is hidden on the
// first page and the forward button when no further page exists.
func shopComponents(items []models.ShopItem, page int) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	if page > 0 {
		buttons = append(buttons, discordgo.Button{
			Label:    "⬅️ Back",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("shop:page:%d", page-1),
		})
	}
	if (page+1)*shopPageSize < len(items) {
		buttons = append(buttons, discordgo.Button{
			Label:    "➡️ Forward",
			Style:    discordgo.SecondaryButton,
			CustomID: fmt.Sprintf("shop:page:%d", page+1),
		})
	}
	if len(buttons) == 0 {
		return nil
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// shopPageFromCustomID parses a shop pager button ID ("shop:page:N")
func shopPageFromCustomID(customID string) (int, bool) {
	raw, ok := strings.CutPrefix(customID, "shop:page:")
	if !ok {
		return 0, false
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		return 0, false
	}
	return page, true
}

func (b *Bot) handleAchievements(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := i.Member.User

	achievements, err := b.repo.Achievements(user.ID, i.GuildID)
	if err != nil {
		b.reportError(err, "achievements command")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 Achievements: %s", user.Username),
		Color: colorGold,
	}
	if len(achievements) == 0 {
		embed.Description = "No achievements yet 😔"
	}
	for _, a := range achievements {
		status := "❌"
		if a.Unlocked() {
			status = "✅"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", status, a.Name),
			Value:  a.Description,
			Inline: false,
		})
	}
	b.respond(s, i, embed, nil)
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to respond to interaction")
	}
}

func (b *Bot) updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to update interaction message")
	}
}
