// Package bugs files bug reports as monday items: it composes the details
// note, creates the item and uploads attachments.
package bugs

import (
	"strings"

	"github.com/h0rv/bugdrop/internal/domain"
)

// NotAvailable stands in for a missing description in the details note.
const NotAvailable = "N/A"

// Compose renders the details note for a report. Header fields come first,
// each only when set, then the description, then the optional narrative
// sections in a fixed order.
func Compose(report domain.BugReport) string {
	var b strings.Builder

	header := []struct{ label, value string }{
		{"Platform", report.Platform},
		{"Environment", report.Environment},
		{"Version", report.Version},
	}
	for _, h := range header {
		if h.value != "" {
			b.WriteString("**" + h.label + ":** " + h.value + "\n")
		}
	}

	description := report.Description
	if description == "" {
		description = NotAvailable
	}
	writeSection(&b, "Description", description)

	writeSection(&b, "Steps to Reproduce", report.StepsToReproduce)
	writeSection(&b, "Actual Result", report.ActualResult)
	writeSection(&b, "Expected Result", report.ExpectedResult)

	return b.String()
}

func writeSection(b *strings.Builder, label, body string) {
	if body == "" {
		return
	}
	b.WriteString("\n**" + label + ":**\n" + body + "\n")
}
