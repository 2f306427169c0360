package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tarslive/waitlist-api/internal/models"
)

func TestBuildEntriesCSV(t *testing.T) {
	entries := []*models.WaitlistEntry{
		{Email: "alice@gmail.com", CreatedAt: time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)},
		{Email: "bob@gmail.com", CreatedAt: time.Date(2026, 12, 25, 0, 0, 0, 0, time.UTC)},
	}

	body := string(BuildEntriesCSV(entries))

	expected := "Email,Joined Date\n" +
		"\"alice@gmail.com\",\"8/3/2026\"\n" +
		"\"bob@gmail.com\",\"12/25/2026\"\n"
	assert.Equal(t, expected, body)
}

func TestBuildEntriesCSV_EmptyList(t *testing.T) {
	body := string(BuildEntriesCSV(nil))

	assert.Equal(t, "Email,Joined Date\n", body)
}

func TestBuildEntriesCSV_DoublesEmbeddedQuotes(t *testing.T) {
	entries := []*models.WaitlistEntry{
		{Email: `weird"quote@gmail.com`, CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	body := string(BuildEntriesCSV(entries))

	assert.Contains(t, body, `"weird""quote@gmail.com","1/2/2026"`)
}

func TestExportFilename(t *testing.T) {
	name := ExportFilename(time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC))

	assert.Equal(t, "waitlist-2026-08-29.csv", name)
}
