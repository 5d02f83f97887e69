// Package reminder composes delayed-task reminder mail. Messages are
// written as RFC 5322 files into a local outbox directory; delivery is
// left to whatever picks the outbox up.
package reminder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/moldworks/moldtrack/internal/model"
)

// Composer writes reminder messages to an outbox directory.
type Composer struct {
	outboxDir string
}

// NewComposer creates a Composer targeting outboxDir. The directory is
// created on first write.
func NewComposer(outboxDir string) *Composer {
	return &Composer{outboxDir: outboxDir}
}

// SendDelayedReminders composes one reminder per delayed task whose
// assignee has a known email address, and writes each message to the
// outbox. Returns the number of messages written.
func (c *Composer) SendDelayedReminders(sender string, members []model.Member, tasks []model.Task) (int, error) {
	emails := make(map[string]string, len(members))
	for _, m := range members {
		emails[m.Name] = m.Email
	}

	if err := os.MkdirAll(c.outboxDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating outbox %s: %w", c.outboxDir, err)
	}

	written := 0
	for _, t := range tasks {
		if t.Status != model.StatusDelayed {
			continue
		}
		to, ok := emails[t.Assignee]
		if !ok || to == "" {
			continue
		}

		msg, err := composeReminder(sender, to, t)
		if err != nil {
			return written, err
		}

		name := fmt.Sprintf("reminder-%s-%s.eml", t.ID, time.Now().Format("20060102-150405"))
		path := filepath.Join(c.outboxDir, name)
		if err := os.WriteFile(path, msg, 0o644); err != nil {
			return written, fmt.Errorf("writing reminder %s: %w", path, err)
		}
		written++
	}

	return written, nil
}

// composeReminder builds a single-part plain-text reminder message.
func composeReminder(sender, to string, t model.Task) ([]byte, error) {
	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Address: sender}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(fmt.Sprintf("[MoldTrack] Delayed task %s: %s", t.ID, t.Title))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Task %s (%s) is past its due date of %s.\n\n", t.ID, t.MoldName, t.DueDate)
	fmt.Fprintf(&sb, "Title:    %s\n", t.Title)
	fmt.Fprintf(&sb, "Progress: %d%%\n", t.Progress)
	fmt.Fprintf(&sb, "Priority: %s\n\n", model.PriorityLabels[t.Priority])
	sb.WriteString("Please update the task or flag the blocker in MoldTrack.\n")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing message: %w", err)
	}

	return buf.Bytes(), nil
}
