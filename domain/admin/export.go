package admin

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/tarslive/waitlist-api/internal/models"
)

// exportDateFormat renders join dates the way the dashboard displays
// them: US-style month/day/year without zero padding.
const exportDateFormat = "1/2/2006"

// BuildEntriesCSV renders the two-column export: a header line, then
// one row per entry in signup order. Every field is quoted; embedded
// quotes are doubled per RFC 4180. encoding/csv is not used because it
// only quotes fields that need it, and the dashboard importer expects
// every field quoted.
func BuildEntriesCSV(entries []*models.WaitlistEntry) []byte {
	var buf bytes.Buffer

	buf.WriteString("Email,Joined Date\n")
	for _, entry := range entries {
		buf.WriteString(quoteField(entry.Email))
		buf.WriteByte(',')
		buf.WriteString(quoteField(entry.CreatedAt.Format(exportDateFormat)))
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

func quoteField(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ExportFilename names the download after the day it was generated.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("waitlist-%s.csv", now.Format("2006-01-02"))
}
