package diff

import (
	"fmt"
	"strings"
)

// Unified renders a result in unified diff format, labelled with the two
// snapshot names. Binary differences render as a one-line notice.
func Unified(oldName, newName string, r *Result) string {
	if r.Binary {
		if !r.HasChanges() {
			return ""
		}
		return fmt.Sprintf("Binary files %s and %s differ\n", oldName, newName)
	}
	if len(r.Hunks) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", oldName)
	fmt.Fprintf(&b, "+++ %s\n", newName)
	for _, h := range r.Hunks {
		fmt.Fprintf(&b, "@@ -%s +%s @@\n", rangeSpec(h.OldStart, h.OldLines), rangeSpec(h.NewStart, h.NewLines))
		for _, l := range h.Lines {
			switch l.Kind {
			case OpEqual:
				b.WriteByte(' ')
			case OpInsert:
				b.WriteByte('+')
			case OpDelete:
				b.WriteByte('-')
			}
			b.WriteString(l.Text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func rangeSpec(start, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}
