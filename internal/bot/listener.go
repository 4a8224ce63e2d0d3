package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"removebg/internal/service"
	"removebg/internal/utils"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const (
	embedColor  = 0xaeefff
	embedFooter = "RemoveBG"

	promptAttachImage = "📷 Please attach an image to your message."
	processingNotice  = "⏳ Removing background..."
)

// Pipeline 处理一组附件，返回与输入顺序一致的结果。
type Pipeline interface {
	ProcessAttachments(ctx context.Context, requester string, attachments []service.Attachment) []service.Outcome
}

// messageSession is the part of *discordgo.Session the listener talks to.
type messageSession interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Listener 监听频道消息，遇到触发命令时调用去背景流水线并回复结果。
type Listener struct {
	session  *discordgo.Session
	pipeline Pipeline
	trigger  string
	now      func() time.Time

	mu     sync.Mutex
	ctx    context.Context
	remove func()
}

// NewListener 创建监听器，但不会连接网关。
func NewListener(token, trigger string, pipeline Pipeline) (*Listener, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discord bot token is not configured")
	}
	if strings.TrimSpace(trigger) == "" {
		return nil, errors.New("trigger command is empty")
	}
	if pipeline == nil {
		return nil, errors.New("pipeline is nil")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return newListener(session, trigger, pipeline), nil
}

func newListener(session *discordgo.Session, trigger string, pipeline Pipeline) *Listener {
	return &Listener{
		session:  session,
		pipeline: pipeline,
		trigger:  trigger,
		now:      time.Now,
		ctx:      context.Background(),
	}
}

// Start 注册消息处理器并打开网关连接。ctx 取消后新消息不再处理。
func (l *Listener) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	l.mu.Lock()
	l.ctx = ctx
	if l.remove != nil {
		l.remove()
	}
	l.remove = l.session.AddHandler(l.onMessageCreate)
	l.mu.Unlock()

	l.session.AddHandlerOnce(func(s *discordgo.Session, r *discordgo.Ready) {
		logrus.WithField("user", userTag(r.User)).Info("discord bot online")
	})

	if err := l.session.Open(); err != nil {
		return fmt.Errorf("discord open connection: %w", err)
	}
	return nil
}

// Close 移除处理器并关闭网关连接。
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.remove != nil {
		l.remove()
		l.remove = nil
	}
	l.mu.Unlock()
	return l.session.Close()
}

func (l *Listener) baseContext() context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctx
}

func (l *Listener) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil {
		return
	}
	ctx := l.baseContext()
	if ctx.Err() != nil {
		return
	}
	l.handleMessage(ctx, s, m.Message)
}

// shouldHandle 只处理真人用户发出的、以触发命令开头的消息
func (l *Listener) shouldHandle(m *discordgo.Message) bool {
	if m == nil || m.Author == nil || m.Author.Bot {
		return false
	}
	return strings.HasPrefix(m.Content, l.trigger)
}

func (l *Listener) handleMessage(ctx context.Context, s messageSession, m *discordgo.Message) {
	if !l.shouldHandle(m) {
		return
	}

	requester := userTag(m.Author)
	log := logrus.WithFields(logrus.Fields{
		"channel_id": m.ChannelID,
		"message_id": m.ID,
		"requester":  requester,
	})
	ref := replyReference(m)

	attachments := collectAttachments(m)
	if err := service.Validate(attachments); err != nil {
		log.WithError(err).Info("trigger without attachments")
		if _, err := s.ChannelMessageSendReply(m.ChannelID, promptAttachImage, ref); err != nil {
			log.WithError(err).Error("failed to send attach prompt")
		}
		return
	}

	ack, err := s.ChannelMessageSendReply(m.ChannelID, processingNotice, ref)
	if err != nil {
		log.WithError(err).Warn("failed to send processing notice")
	}

	log.WithField("attachments", len(attachments)).Info("processing attachments")
	outcomes := l.pipeline.ProcessAttachments(ctx, requester, attachments)

	for _, out := range outcomes {
		var sendErr error
		if out.Succeeded() {
			_, sendErr = s.ChannelMessageSendComplex(m.ChannelID, buildSuccessMessage(ref, requester, out.Result, l.now()))
		} else {
			_, sendErr = s.ChannelMessageSendReply(m.ChannelID, failureNotice(out.Attachment.Name), ref)
		}
		if sendErr != nil {
			log.WithError(sendErr).WithField("attachment", out.Attachment.Name).Error("failed to send outcome reply")
		}
	}

	if ack != nil {
		if err := s.ChannelMessageDelete(ack.ChannelID, ack.ID); err != nil {
			log.WithError(err).Debug("failed to delete processing notice")
		}
	}
}

// userTag 新版用户名没有 discriminator，旧账号保留 name#1234 形式
func userTag(u *discordgo.User) string {
	if u == nil {
		return ""
	}
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

func replyReference(m *discordgo.Message) *discordgo.MessageReference {
	return &discordgo.MessageReference{
		MessageID: m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
	}
}

func collectAttachments(m *discordgo.Message) []service.Attachment {
	if m == nil || len(m.Attachments) == 0 {
		return nil
	}
	attachments := make([]service.Attachment, 0, len(m.Attachments))
	for _, att := range m.Attachments {
		if att == nil {
			continue
		}
		attachments = append(attachments, service.Attachment{
			Name: att.Filename,
			URL:  att.URL,
		})
	}
	return attachments
}

func failureNotice(name string) string {
	return fmt.Sprintf("⚠️ Sorry, something went wrong with image: %s", name)
}

func buildSuccessMessage(ref *discordgo.MessageReference, requester string, res *service.Result, now time.Time) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Reference: ref,
		Embeds: []*discordgo.MessageEmbed{
			{
				Title: "✅ Background removed!",
				Color: embedColor,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Dimensions", Value: fmt.Sprintf("%d × %d px", res.Width, res.Height), Inline: true},
					{Name: "File size", Value: fmt.Sprintf("%.2f MB", res.SizeMB), Inline: true},
					{Name: "User", Value: requester, Inline: false},
				},
				Image:     &discordgo.MessageEmbedImage{URL: "attachment://" + res.FileName},
				Footer:    &discordgo.MessageEmbedFooter{Text: embedFooter},
				Timestamp: now.UTC().Format(time.RFC3339),
			},
		},
		Files: []*discordgo.File{
			{
				Name:        res.FileName,
				ContentType: uploadContentType(res),
				Reader:      bytes.NewReader(res.Data),
			},
		},
	}
}

// uploadContentType 按结果的实际格式声明上传文件类型
func uploadContentType(res *service.Result) string {
	if res.ContentType != "" {
		return res.ContentType
	}
	if ct := utils.MimeFromExtension(path.Ext(res.FileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
