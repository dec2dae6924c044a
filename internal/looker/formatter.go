package looker

import (
	"fmt"
	"strings"
	"time"
)

// Summary returns a one-line summary of the user
func (u *User) Summary() string {
	email := u.CredentialEmail()
	if email == "" {
		email = "(no e-mail login)"
	}
	return fmt.Sprintf("#%s %s <%s>", u.ID, u.Name(), email)
}

// FormatDetailed returns a multi-section description of the user
func (u *User) FormatDetailed() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== User %s ===\n", u.ID))
	b.WriteString(fmt.Sprintf("Name:          %s\n", u.Name()))
	b.WriteString(fmt.Sprintf("Contact Email: %s\n", orNone(u.Email)))
	b.WriteString(fmt.Sprintf("Login Email:   %s\n", orNone(u.CredentialEmail())))
	if u.IsDisabled {
		b.WriteString("Status:        DISABLED\n")
	} else {
		b.WriteString("Status:        active\n")
	}
	if u.CredentialsEmail != nil && u.CredentialsEmail.LoggedInAt != nil {
		b.WriteString(fmt.Sprintf("Last Login:    %s\n", formatTime(u.CredentialsEmail.LoggedInAt)))
	}

	return b.String()
}

// FormatUsersCompact renders one line per user, aligned in columns
func FormatUsersCompact(users []User) string {
	if len(users) == 0 {
		return "No users.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-8s %-28s %-36s %s\n", "ID", "NAME", "LOGIN EMAIL", "STATUS"))
	for i := range users {
		u := &users[i]
		status := "active"
		if u.IsDisabled {
			status = "disabled"
		}
		b.WriteString(fmt.Sprintf("%-8s %-28s %-36s %s\n",
			u.ID, clip(u.Name(), 28), clip(orNone(u.CredentialEmail()), 36), status))
	}
	return b.String()
}

// FormatUsersDetailed renders every user with FormatDetailed
func FormatUsersDetailed(users []User) string {
	if len(users) == 0 {
		return "No users.\n"
	}

	var b strings.Builder
	for i := range users {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(users[i].FormatDetailed())
	}
	return b.String()
}

// Summary returns a one-line summary of the schedule
func (p *ScheduledPlan) Summary() string {
	state := "enabled"
	if !p.Enabled {
		state = "disabled"
	}
	return fmt.Sprintf("#%s %q (%s, %s)", p.ID, p.Name, p.Crontab, state)
}

// FormatDetailed returns a multi-section description of the schedule
func (p *ScheduledPlan) FormatDetailed() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== Schedule %s ===\n", p.ID))
	b.WriteString(fmt.Sprintf("Name:     %s\n", p.Name))
	b.WriteString(fmt.Sprintf("Owner:    %s\n", p.OwnerName()))
	b.WriteString(fmt.Sprintf("Source:   %s\n", p.Source()))
	b.WriteString(fmt.Sprintf("Crontab:  %s %s\n", orNone(p.Crontab), p.Timezone))
	b.WriteString(fmt.Sprintf("Enabled:  %v\n", p.Enabled))
	b.WriteString(fmt.Sprintf("Next Run: %s\n", formatTime(p.NextRunAt)))
	b.WriteString(fmt.Sprintf("Last Run: %s\n", formatTime(p.LastRunAt)))

	if len(p.Destinations) > 0 {
		b.WriteString("Destinations:\n")
		for _, d := range p.Destinations {
			b.WriteString(fmt.Sprintf("  - %s %s (%s)\n", d.Type, d.Address, d.Format))
		}
	}

	return b.String()
}

// FormatSchedulesCompact renders one line per schedule
func FormatSchedulesCompact(plans []ScheduledPlan) string {
	if len(plans) == 0 {
		return "No schedules.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-8s %-32s %-20s %-16s %s\n", "ID", "NAME", "OWNER", "CRONTAB", "NEXT RUN"))
	for i := range plans {
		p := &plans[i]
		b.WriteString(fmt.Sprintf("%-8s %-32s %-20s %-16s %s\n",
			p.ID, clip(p.Name, 32), clip(p.OwnerName(), 20), clip(orNone(p.Crontab), 16), formatTime(p.NextRunAt)))
	}
	return b.String()
}

// FormatSchedulesDetailed renders every schedule with FormatDetailed
func FormatSchedulesDetailed(plans []ScheduledPlan) string {
	if len(plans) == 0 {
		return "No schedules.\n"
	}

	var b strings.Builder
	for i := range plans {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(plans[i].FormatDetailed())
	}
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// clip shortens s to at most width runes
func clip(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
