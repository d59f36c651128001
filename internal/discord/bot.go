package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	sentry "github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"

	"playpal/internal/activity"
	"playpal/internal/database"
	"playpal/pkg/utils"
)

const (
	voiceFlushInterval = 60 * time.Second
	logContextMaxLen   = 100
)

// Bot represents the Discord bot
type Bot struct {
	session *discordgo.Session
	repo    *database.Repository
	tracker *activity.Tracker
}

// New creates a new Discord bot
func New(token string, repo *database.Repository) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	bot := &Bot{
		session: session,
		repo:    repo,
	}
	bot.tracker = activity.NewTracker(voiceFlushInterval, bot.accrueVoice)

	// Add event handlers
	session.AddHandler(bot.ready)
	session.AddHandler(bot.guildCreate)
	session.AddHandler(bot.guildMemberAdd)
	session.AddHandler(bot.messageCreate)
	session.AddHandler(bot.voiceStateUpdate)
	session.AddHandler(bot.interactionCreate)

	return bot, nil
}

// Start opens the gateway connection, registers slash commands and starts
// the voice flush loop.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}

	b.tracker.Start()
	log.Info().Msg("bot is running")
	return nil
}

// Stop cancels the voice flush loop and closes the gateway connection
func (b *Bot) Stop() error {
	b.tracker.Stop()
	return b.session.Close()
}

func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("logged in")
}

// guildCreate fires for every guild at startup and whenever the bot joins
// a new one; it seeds the guild and its visible non-bot members.
func (b *Bot) guildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if err := b.repo.EnsureGuild(g.ID, g.Name); err != nil {
		b.reportError(err, "guild create")
		return
	}
	for _, member := range g.Members {
		if member.User == nil || member.User.Bot {
			continue
		}
		if err := b.repo.EnsureUser(member.User.ID, g.ID); err != nil {
			b.reportError(err, "guild member seed")
		}
	}
	log.Info().Str("guild", g.Name).Int("members", len(g.Members)).Msg("guild registered")
}

func (b *Bot) guildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	if err := b.repo.EnsureUser(m.User.ID, m.GuildID); err != nil {
		b.reportError(err, "member join")
	}
}

// messageCreate accrues one message worth of activity
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot || m.GuildID == "" {
		return
	}

	result, err := b.repo.Accrue(m.Author.ID, m.GuildID, 1, 0)
	if err != nil {
		b.reportError(err, "message accrual")
		return
	}

	if err := b.repo.LogActivity(m.Author.ID, m.GuildID, "message",
		utils.TruncateString(m.Content, logContextMaxLen), result.ActivityPoints); err != nil {
		b.reportError(err, "activity log")
	}

	b.maybeGrantRoles(s, m.GuildID, m.Author.ID)

	log.Info().
		Str("user", m.Author.Username).
		Float64("points", result.ActivityPoints).
		Int("xp", result.XP).
		Int("streak", result.Streak).
		Msg("message accrued")
}

// voiceStateUpdate drives the voice session tracker
func (b *Bot) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	userID := vs.UserID
	guildID := vs.GuildID

	// Join channel
	if vs.ChannelID != "" && !b.tracker.Active(guildID, userID) {
		b.tracker.Join(guildID, userID, time.Now().UTC())
		log.Debug().Str("user", userID).Str("guild", guildID).Msg("voice join")
	}

	// Leave channel
	if vs.ChannelID == "" {
		b.tracker.Leave(guildID, userID, time.Now().UTC())
		log.Debug().Str("user", userID).Str("guild", guildID).Msg("voice leave")
	}
}

// accrueVoice is the tracker's sink: it accrues whole minutes of voice
// presence from leave events and periodic flushes.
func (b *Bot) accrueVoice(guildID, userID string, minutes int) {
	result, err := b.repo.Accrue(userID, guildID, 0, minutes)
	if err != nil {
		b.reportError(err, "voice accrual")
		return
	}

	if err := b.repo.LogActivity(userID, guildID, "voice",
		fmt.Sprintf("%d min", minutes), result.ActivityPoints); err != nil {
		b.reportError(err, "activity log")
	}

	log.Info().
		Str("user", userID).
		Str("guild", guildID).
		Int("minutes", minutes).
		Float64("points", result.ActivityPoints).
		Int("xp", result.XP).
		Int("streak", result.Streak).
		Msg("voice accrued")
}

// maybeGrantRoles grants any configured guild role whose points threshold
// the user's balance now meets.
func (b *Bot) maybeGrantRoles(s *discordgo.Session, guildID, userID string) {
	thresholds, err := b.repo.RoleThresholds(guildID)
	if err != nil {
		b.reportError(err, "role thresholds")
		return
	}
	if len(thresholds) == 0 {
		return
	}

	profile, err := b.repo.Profile(userID, guildID)
	if err != nil {
		b.reportError(err, "role profile")
		return
	}

	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		b.reportError(err, "role member lookup")
		return
	}
	held := make(map[string]bool, len(member.Roles))
	for _, roleID := range member.Roles {
		held[roleID] = true
	}

	for _, rt := range thresholds {
		if held[rt.RoleID] || profile.Points < rt.RequiredPoints {
			continue
		}
		if err := s.GuildMemberRoleAdd(guildID, userID, rt.RoleID); err != nil {
			b.reportError(err, "role grant")
			continue
		}
		log.Info().Str("user", userID).Str("role", rt.RoleID).Msg("role granted")
	}
}

// reportError logs a handler failure and forwards it to Sentry. Events are
// dropped, never retried; one failed event must not crash the process.
func (b *Bot) reportError(err error, context string) {
	sentry.CaptureException(err)
	log.Error().Err(err).Str("context", context).Msg("handler error")
}
