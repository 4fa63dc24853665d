package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed    = 16711680 // #FF0000 - rejection
	ColorOrange = 16753920 // #FFA500 - transfer

	Username = "Mayfair Kitchen"
)

// alert is one manager-facing message rendered for both webhook flavours.
type alert struct {
	title   string
	text    string
	color   int
	slack   string
	emoji   string
	fields  [][2]string
	kitchen models.Restaurant
	at      time.Time
}

// ManagerAlerts posts kitchen rejections and item transfers to the Discord
// and Slack webhooks configured on the kitchen. Sends happen off the request
// path; failures are logged and dropped.
type ManagerAlerts struct {
	client *http.Client
	log    *slog.Logger
	wg     sync.WaitGroup
}

func NewManagerAlerts(timeout time.Duration, log *slog.Logger) *ManagerAlerts {
	return &ManagerAlerts{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

func (m *ManagerAlerts) OrderRejected(ctx context.Context, kitchen models.Restaurant, order models.Order, reason string, itemCount int) {
	m.send(ctx, alert{
		title:   "Order rejected",
		text:    fmt.Sprintf("**%s** rejected %d item(s) on order #%d.", kitchen.Name, itemCount, order.ID),
		color:   ColorRed,
		slack:   "danger",
		emoji:   ":no_entry:",
		kitchen: kitchen,
		at:      time.Now().UTC(),
		fields: [][2]string{
			{"Order", fmt.Sprintf("#%d", order.ID)},
			{"Kitchen", kitchen.Name},
			{"Items", fmt.Sprintf("%d", itemCount)},
			{"Reason", reason},
		},
	})
}

func (m *ManagerAlerts) ItemTransferred(ctx context.Context, from, to models.Restaurant, order models.Order, item models.OrderItem) {
	name := item.MenuItem.Name
	if name == "" {
		name = fmt.Sprintf("item #%d", item.ID)
	}
	m.send(ctx, alert{
		title:   "Item transferred",
		text:    fmt.Sprintf("%dx %s on order #%d moved from **%s** to **%s**.", item.Quantity, name, order.ID, from.Name, to.Name),
		color:   ColorOrange,
		slack:   "warning",
		emoji:   ":arrows_counterclockwise:",
		kitchen: to,
		at:      time.Now().UTC(),
		fields: [][2]string{
			{"Order", fmt.Sprintf("#%d", order.ID)},
			{"From", from.Name},
			{"To", to.Name},
		},
	})
}

// Wait blocks until every queued send has finished.
func (m *ManagerAlerts) Wait() {
	m.wg.Wait()
}

func (m *ManagerAlerts) send(ctx context.Context, a alert) {
	if a.kitchen.DiscordWebhook == "" && a.kitchen.SlackWebhook == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		if a.kitchen.DiscordWebhook != "" {
			if err := m.post(ctx, a.kitchen.DiscordWebhook, discordPayload(a)); err != nil {
				m.log.Warn("discord alert failed", slog.String("kitchen", a.kitchen.Name), slog.Any("error", err))
			}
		}
		if a.kitchen.SlackWebhook != "" {
			if err := m.post(ctx, a.kitchen.SlackWebhook, slackPayload(a)); err != nil {
				m.log.Warn("slack alert failed", slog.String("kitchen", a.kitchen.Name), slog.Any("error", err))
			}
		}
	}()
}

func discordPayload(a alert) DiscordWebhookRequest {
	fields := make([]DiscordWebhookField, 0, len(a.fields))
	for _, f := range a.fields {
		fields = append(fields, DiscordWebhookField{Name: f[0], Value: f[1], Inline: f[0] != "Reason"})
	}

	return DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       "**" + a.title + "**",
				Description: a.text,
				Color:       a.color,
				Fields:      fields,
				Footer:      &DiscordFooter{Text: a.kitchen.Name},
				Timestamp:   a.at.Format(time.RFC3339),
			},
		},
	}
}

func slackPayload(a alert) SlackWebhookRequest {
	fields := make([]SlackField, 0, len(a.fields))
	for _, f := range a.fields {
		fields = append(fields, SlackField{Title: f[0], Value: f[1], Short: f[0] != "Reason"})
	}

	return SlackWebhookRequest{
		Username:  Username,
		IconEmoji: a.emoji,
		Text:      a.emoji + " *" + a.title + "*",
		Attachments: []SlackAttachment{
			{
				Color:     a.slack,
				Title:     a.title,
				Text:      a.text,
				Fields:    fields,
				Footer:    a.kitchen.Name,
				Timestamp: a.at.Unix(),
			},
		},
	}
}

func (m *ManagerAlerts) post(ctx context.Context, webhookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
