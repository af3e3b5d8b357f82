// internal/app/renderer.go
package app

import (
	"fmt"
	"math"
	"strings"
	"time"

	domainEmail "quiet_hours_notifier/internal/domain/email"
	"quiet_hours_notifier/internal/domain/profile"
	"quiet_hours_notifier/internal/domain/schedule"
)

// Renderer builds the reminder email for a study block. Render is a pure
// function of its inputs: no I/O, no clock reads, so the same block, profile
// and now always produce the same message.
type Renderer struct {
	from     string
	location *time.Location
}

// NewRenderer returns a renderer that formats all times in the given IANA
// zone and stamps messages with the given From address.
func NewRenderer(from, displayTimeZone string) (*Renderer, error) {
	loc, err := time.LoadLocation(displayTimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid display time zone %q: %w", displayTimeZone, err)
	}
	return &Renderer{from: from, location: loc}, nil
}

func (r *Renderer) Render(block *schedule.StudyBlock, p *profile.Profile, now time.Time) domainEmail.Message {
	start := block.StartTime.In(r.location)
	end := block.EndTime.In(r.location)

	startStr := start.Format("3:04 PM")
	endStr := end.Format("3:04 PM")
	dateStr := start.Format("Monday, January 2, 2006")
	durationMin := roundMinutes(block.EndTime.Sub(block.StartTime))
	// A catch-up run can pick up a block already past its start; "starts in
	// -3 minutes" reads wrong, so floor at zero.
	startsInMin := roundMinutes(block.StartTime.Sub(now))
	if startsInMin < 0 {
		startsInMin = 0
	}

	var body strings.Builder
	body.WriteString(`<div style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	body.WriteString(`<h1 style="color: #1a365d; margin-bottom: 20px;">🔔 Study Session Reminder</h1>`)
	body.WriteString(`<div style="background: #f7fafc; border-radius: 8px; padding: 20px; margin-bottom: 20px;">`)
	body.WriteString(fmt.Sprintf(`<h2 style="color: #2d3748; margin-top: 0;">%s</h2>`, block.Title))
	// No placeholder paragraph when the description is absent.
	if block.Description.Valid && block.Description.String != "" {
		body.WriteString(fmt.Sprintf(`<p style="color: #4a5568; margin-bottom: 15px;">%s</p>`, block.Description.String))
	}
	body.WriteString(`<div style="color: #4a5568;">`)
	body.WriteString(fmt.Sprintf(`<p><strong>📅 Date:</strong> %s</p>`, dateStr))
	body.WriteString(fmt.Sprintf(`<p><strong>⏰ Time:</strong> %s - %s</p>`, startStr, endStr))
	body.WriteString(fmt.Sprintf(`<p><strong>⏱️ Duration:</strong> %d minutes</p>`, durationMin))
	body.WriteString(`</div></div>`)
	body.WriteString(`<div style="background: #e6fffa; border-radius: 8px; padding: 20px; border-left: 4px solid #38b2ac;">`)
	body.WriteString(fmt.Sprintf(`<p style="margin: 0; color: #234e52;"><strong>Your quiet study session starts in %d minutes!</strong><br>Get ready to focus and make the most of your dedicated study time.</p>`, startsInMin))
	body.WriteString(`</div>`)
	body.WriteString(`<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #e2e8f0; color: #718096; font-size: 14px;"><p>Happy studying! 📖</p><p>- Quiet Hours Scheduler</p></div>`)
	body.WriteString(`</div>`)

	return domainEmail.Message{
		From:    r.from,
		To:      []string{p.Email},
		Subject: fmt.Sprintf(`📚 Your study session "%s" starts in %d minutes!`, block.Title, startsInMin),
		HTML:    body.String(),
	}
}

func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}
