package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/maxviazov/community-hub-service/internal/model"
)

// Content is a rendered subject and HTML body.
type Content struct {
	Subject string
	HTML    string
}

// markdown escapes raw HTML in the source; WithUnsafe is deliberately not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

const layout = `<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;background:#f6f6f6;padding:24px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
{{template "body" .}}
<p style="color:#888;font-size:12px;margin-top:32px">You are receiving this because you joined the community.</p>
</div></body></html>`

var templates = map[string]*template.Template{
	"announcement": mustParse(`{{define "body"}}
<h1>New Event: {{.Event.Title}}</h1>
{{if .Event.CoverImage}}<img src="{{.Event.CoverImage}}" alt="" style="width:100%;border-radius:6px">{{end}}
<p>{{.Event.Description}}</p>
<p><strong>When:</strong> {{.When}}<br><strong>Where:</strong> {{.Event.Location}}</p>
<p><a href="{{.Link}}">Register now</a></p>
{{end}}`),
	"reminder": mustParse(`{{define "body"}}
<h1>Hi {{.Name}},</h1>
<p><strong>{{.Event.Title}}</strong> {{.Headline}}.</p>
<p><strong>When:</strong> {{.When}}<br><strong>Where:</strong> {{.Event.Location}}</p>
<p><a href="{{.Link}}">View event details</a></p>
{{end}}`),
	"welcome": mustParse(`{{define "body"}}
<h1>Welcome, {{.Name}}!</h1>
<p>Thanks for registering with the community. We will keep you posted about upcoming events.</p>
{{end}}`),
	"event_confirmation": mustParse(`{{define "body"}}
<h1>You're in, {{.Name}}!</h1>
<p>Your spot for <strong>{{.Event.Title}}</strong> is confirmed.</p>
<p><strong>When:</strong> {{.When}}<br><strong>Where:</strong> {{.Event.Location}}</p>
<p><a href="{{.Link}}">View event details</a></p>
{{end}}`),
	"broadcast": mustParse(`{{define "body"}}
<h1>{{.Subject}}</h1>
{{.Body}}
{{end}}`),
}

func mustParse(body string) *template.Template {
	return template.Must(template.Must(template.New("layout").Parse(layout)).Parse(body))
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates[name].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", name, err)
	}
	return buf.String(), nil
}

func when(t time.Time) string {
	return t.UTC().Format("Monday, January 2, 2006 at 15:04 UTC")
}

var headlines = map[model.TimeFrame]string{
	model.TimeFrameOneWeek:  "is one week away",
	model.TimeFrameThreeDay: "is in 3 days",
	model.TimeFrameTomorrow: "is tomorrow",
	model.TimeFrameToday:    "is today",
}

func Announcement(ev model.Event, link string) (Content, error) {
	html, err := render("announcement", map[string]any{"Event": ev, "When": when(ev.Date), "Link": link})
	if err != nil {
		return Content{}, err
	}
	return Content{Subject: "New Event: " + ev.Title, HTML: html}, nil
}

func Reminder(name string, ev model.Event, tf model.TimeFrame, link string) (Content, error) {
	html, err := render("reminder", map[string]any{
		"Name": name, "Event": ev, "When": when(ev.Date), "Headline": headlines[tf], "Link": link,
	})
	if err != nil {
		return Content{}, err
	}
	return Content{Subject: "Reminder: " + ev.Title, HTML: html}, nil
}

func Welcome(name string) (Content, error) {
	html, err := render("welcome", map[string]any{"Name": name})
	if err != nil {
		return Content{}, err
	}
	return Content{Subject: "Welcome to the community", HTML: html}, nil
}

func EventConfirmation(name string, ev model.Event, link string) (Content, error) {
	html, err := render("event_confirmation", map[string]any{"Name": name, "Event": ev, "When": when(ev.Date), "Link": link})
	if err != nil {
		return Content{}, err
	}
	return Content{Subject: "Registration confirmed: " + ev.Title, HTML: html}, nil
}

// Broadcast renders a Markdown body; raw HTML in the source is escaped, not passed through.
func Broadcast(subject, body string) (Content, error) {
	var md bytes.Buffer
	if err := markdown.Convert([]byte(body), &md); err != nil {
		return Content{}, fmt.Errorf("render markdown: %w", err)
	}
	html, err := render("broadcast", map[string]any{
		"Subject": subject,
		"Body":    template.HTML(md.String()), // goldmark output is already escaped
	})
	if err != nil {
		return Content{}, err
	}
	return Content{Subject: subject, HTML: html}, nil
}
