package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"guildkeeper/models"
)

// transcriptTemplate renders a closed ticket's message log as a standalone
// HTML document. All user-provided content passes through html/template's
// contextual escaping.
var transcriptTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Ticket #{{.Ticket.ID}} transcript</title>
<style>
body { font-family: sans-serif; background: #313338; color: #dbdee1; margin: 0; padding: 24px; }
.header { border-bottom: 1px solid #3f4147; padding-bottom: 12px; margin-bottom: 16px; }
.header h1 { font-size: 20px; margin: 0 0 4px 0; }
.meta { color: #949ba4; font-size: 13px; }
.message { padding: 6px 0; }
.author { font-weight: 600; color: #f2f3f5; }
.timestamp { color: #949ba4; font-size: 12px; margin-left: 8px; }
.content { margin: 2px 0 0 0; white-space: pre-wrap; }
.attachment { display: block; color: #00a8fc; font-size: 13px; }
</style>
</head>
<body>
<div class="header">
<h1>Ticket #{{.Ticket.ID}} ({{.Ticket.Kind}})</h1>
<div class="meta">Opened by {{.Ticket.OpenerID}} · {{.Ticket.CreatedAt.Format "2006-01-02 15:04 MST"}}</div>
{{if .Ticket.CloseReason}}<div class="meta">Close reason: {{.Ticket.CloseReason}}</div>{{end}}
<div class="meta">{{len .Messages}} messages</div>
</div>
{{range .Messages}}<div class="message">
<span class="author">{{.AuthorName}}</span><span class="timestamp">{{.CreatedAt.Format "2006-01-02 15:04:05"}}</span>
<p class="content">{{.Content}}</p>
{{range .Attachments}}<a class="attachment" href="{{.}}">{{.}}</a>
{{end}}</div>
{{end}}</body>
</html>
`))

type transcriptData struct {
	Ticket   *models.Ticket
	Messages []*models.TicketMessage
}

// Render produces the HTML transcript for a closed ticket
func Render(ticket *models.Ticket, messages []*models.TicketMessage) ([]byte, error) {
	var buf bytes.Buffer
	err := transcriptTemplate.Execute(&buf, transcriptData{Ticket: ticket, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to render transcript for ticket %d: %w", ticket.ID, err)
	}
	return buf.Bytes(), nil
}

// Filename returns the attachment name used when uploading a transcript
func Filename(ticket *models.Ticket) string {
	return fmt.Sprintf("ticket-%d-%s.html", ticket.ID, time.Now().Format("20060102-150405"))
}
