package transcript

import (
	"strings"
	"testing"
	"time"

	"guildkeeper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	reason := "resolved"
	ticket := &models.Ticket{
		ID:          42,
		GuildID:     100,
		OpenerID:    500,
		Kind:        models.TicketKindSupport,
		ChannelID:   9001,
		Status:      models.TicketStatusClosed,
		CloseReason: &reason,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	messages := []*models.TicketMessage{
		{AuthorID: 500, AuthorName: "opener", Content: "my download is broken", CreatedAt: ticket.CreatedAt},
		{AuthorID: 777, AuthorName: "staff", Content: "try this link", Attachments: []string{"https://cdn.example.com/fix.zip"}, CreatedAt: ticket.CreatedAt.Add(time.Minute)},
	}

	html, err := Render(ticket, messages)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, "Ticket #42")
	assert.Contains(t, out, "my download is broken")
	assert.Contains(t, out, "staff")
	assert.Contains(t, out, "https://cdn.example.com/fix.zip")
	assert.Contains(t, out, "resolved")
}

func TestRenderEscapesUserContent(t *testing.T) {
	ticket := &models.Ticket{ID: 43, Kind: models.TicketKindSupport, CreatedAt: time.Now()}
	messages := []*models.TicketMessage{
		{AuthorName: "<script>alert(1)</script>", Content: "<img src=x onerror=alert(1)>", CreatedAt: time.Now()},
	}

	html, err := Render(ticket, messages)
	require.NoError(t, err)

	out := string(html)
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.NotContains(t, out, "<img src=x")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFilename(t *testing.T) {
	ticket := &models.Ticket{ID: 7}
	name := Filename(ticket)
	assert.True(t, strings.HasPrefix(name, "ticket-7-"))
	assert.True(t, strings.HasSuffix(name, ".html"))
}
