package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/logger"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
)

type captured struct {
	mu     sync.Mutex
	bodies map[string][]byte
}

func (c *captured) handler(name string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&raw)
		c.mu.Lock()
		c.bodies[name] = raw
		c.mu.Unlock()
		w.WriteHeader(status)
	}
}

func TestOrderRejectedPostsToBothWebhooks(t *testing.T) {
	c := &captured{bodies: map[string][]byte{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/discord", c.handler("discord", http.StatusNoContent))
	mux.HandleFunc("/slack", c.handler("slack", http.StatusOK))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	alerts := NewManagerAlerts(2*time.Second, logger.Discard())
	k := models.Restaurant{Name: "Mayfair Bar", DiscordWebhook: srv.URL + "/discord", SlackWebhook: srv.URL + "/slack"}
	order := models.Order{BaseModel: models.BaseModel{ID: 12}}

	ctx, cancel := context.WithCancel(context.Background())
	alerts.OrderRejected(ctx, k, order, "out of stock", 2)
	cancel()
	alerts.Wait()

	var discord DiscordWebhookRequest
	require.NoError(t, json.Unmarshal(c.bodies["discord"], &discord))
	require.Len(t, discord.Embeds, 1)
	assert.Equal(t, ColorRed, discord.Embeds[0].Color)
	assert.Contains(t, discord.Embeds[0].Description, "order #12")
	assert.Contains(t, discord.Embeds[0].Fields, DiscordWebhookField{Name: "Reason", Value: "out of stock"})

	var slack SlackWebhookRequest
	require.NoError(t, json.Unmarshal(c.bodies["slack"], &slack))
	require.Len(t, slack.Attachments, 1)
	assert.Equal(t, "danger", slack.Attachments[0].Color)
	assert.Equal(t, "Mayfair Bar", slack.Attachments[0].Footer)
}

func TestItemTransferredFailureIsSwallowed(t *testing.T) {
	c := &captured{bodies: map[string][]byte{}}
	srv := httptest.NewServer(c.handler("discord", http.StatusInternalServerError))
	defer srv.Close()

	alerts := NewManagerAlerts(2*time.Second, logger.Discard())
	from := models.Restaurant{Name: "Mayfair Bar"}
	to := models.Restaurant{Name: "Pool Bar", DiscordWebhook: srv.URL}
	item := models.OrderItem{Quantity: 2, MenuItem: &models.MenuItem{Name: "Beer"}}

	alerts.ItemTransferred(context.Background(), from, to, models.Order{BaseModel: models.BaseModel{ID: 3}}, item)
	alerts.Wait()

	var discord DiscordWebhookRequest
	require.NoError(t, json.Unmarshal(c.bodies["discord"], &discord))
	assert.Contains(t, discord.Embeds[0].Description, "2x Beer")
	assert.Equal(t, ColorOrange, discord.Embeds[0].Color)
}

func TestNoWebhooksConfigured(t *testing.T) {
	alerts := NewManagerAlerts(time.Second, logger.Discard())
	alerts.OrderRejected(context.Background(), models.Restaurant{Name: "Quiet Kitchen"}, models.Order{}, "closed", 1)
	alerts.Wait()
}
