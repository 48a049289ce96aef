// ABOUTME: Tests for campaign loading, validation, ID derivation, and UTM URL construction.

package main

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCampaignsYAML = `campaigns:
  - name: "Spring Flyer"
    location: "Shibuya Station"
    start_date: "2025-03-01"
    end_date: "2025-03-31"
    budget: 50000
    target_url: "https://example.com/landing"
  - name: "Poster A/B"
    location: "Shinjuku"
    start_date: "2025-03-15"
    end_date: "2025-04-15"
    budget: 120000
    target_url: "https://example.com/app?ref=poster"

conversion_events:
  - event_name: "app_download"
    description: "App store click"
`

func writeCampaignsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaigns.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCampaigns(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		file, err := loadCampaigns(writeCampaignsFile(t, sampleCampaignsYAML))
		require.NoError(t, err)

		require.Len(t, file.Campaigns, 2)
		assert.Equal(t, "Spring Flyer", file.Campaigns[0].Name)
		assert.Equal(t, 50000, file.Campaigns[0].Budget)
		require.Len(t, file.ConversionEvents, 1)
		assert.Equal(t, "app_download", file.ConversionEvents[0].EventName)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadCampaigns(filepath.Join(t.TempDir(), "nope.yml"))
		require.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := loadCampaigns(writeCampaignsFile(t, "campaigns: [unclosed"))
		require.Error(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := loadCampaigns(writeCampaignsFile(t, `campaigns:
  - name: "X"
    location: "Y"
    start_date: "03/01/2025"
    end_date: "2025-03-31"
    budget: 100
    target_url: "https://example.com"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start_date")
	})

	t.Run("non-positive budget", func(t *testing.T) {
		_, err := loadCampaigns(writeCampaignsFile(t, `campaigns:
  - name: "X"
    location: "Y"
    start_date: "2025-03-01"
    end_date: "2025-03-31"
    budget: 0
    target_url: "https://example.com"
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "budget")
	})
}

func TestCampaignID(t *testing.T) {
	a := Campaign{Name: "Spring Flyer", StartDate: "2025-03-01"}
	b := Campaign{Name: "Spring Flyer", StartDate: "2025-03-01"}
	c := Campaign{Name: "Spring Flyer", StartDate: "2025-04-01"}

	assert.Len(t, a.ID(), 8)
	assert.Regexp(t, "^[0-9a-f]{8}$", a.ID())
	assert.Equal(t, a.ID(), b.ID(), "same name and start date must give the same ID")
	assert.NotEqual(t, a.ID(), c.ID(), "different start date must change the ID")
}

func TestUTMURL(t *testing.T) {
	t.Run("adds all utm parameters", func(t *testing.T) {
		c := Campaign{
			Name:      "Spring Flyer",
			Location:  "Shibuya Station",
			StartDate: "2025-03-01",
			TargetURL: "https://example.com/landing",
		}

		raw, err := c.UTMURL()
		require.NoError(t, err)

		parsed, err := url.Parse(raw)
		require.NoError(t, err)
		q := parsed.Query()

		assert.Equal(t, "offline", q.Get("utm_source"))
		assert.Equal(t, "print", q.Get("utm_medium"))
		assert.Equal(t, c.ID(), q.Get("utm_campaign"))
		assert.Equal(t, "Shibuya Station", q.Get("utm_content"))
		assert.Equal(t, "Spring Flyer", q.Get("utm_term"))
		assert.Equal(t, "example.com", parsed.Host)
		assert.Equal(t, "/landing", parsed.Path)
	})

	t.Run("preserves existing query parameters", func(t *testing.T) {
		c := Campaign{
			Name:      "Poster",
			Location:  "Shinjuku",
			StartDate: "2025-03-01",
			TargetURL: "https://example.com/app?ref=poster&utm_source=old",
		}

		raw, err := c.UTMURL()
		require.NoError(t, err)

		parsed, err := url.Parse(raw)
		require.NoError(t, err)
		q := parsed.Query()

		assert.Equal(t, "poster", q.Get("ref"))
		assert.Equal(t, "offline", q.Get("utm_source"), "utm keys in the target are overwritten")
	})

	t.Run("invalid target url", func(t *testing.T) {
		c := Campaign{TargetURL: "://bad"}
		_, err := c.UTMURL()
		require.Error(t, err)
	})
}

func TestCampaignCovers(t *testing.T) {
	c := Campaign{StartDate: "2025-03-01", EndDate: "2025-03-31"}

	day := func(s string) time.Time {
		d, err := time.Parse(campaignDateLayout, s)
		require.NoError(t, err)
		return d
	}

	assert.True(t, c.covers(day("2025-03-01")), "start date is inclusive")
	assert.True(t, c.covers(day("2025-03-31")), "end date is inclusive")
	assert.True(t, c.covers(day("2025-03-15")))
	assert.False(t, c.covers(day("2025-02-28")))
	assert.False(t, c.covers(day("2025-04-01")))
}

func TestFileSlug(t *testing.T) {
	c := Campaign{Name: "Spring 2025/March Flyer"}
	assert.Equal(t, "Spring_2025_March_Flyer", c.fileSlug())
}

func TestConversionEventsOrDefault(t *testing.T) {
	t.Run("configured events win", func(t *testing.T) {
		f := &CampaignsFile{ConversionEvents: []ConversionEventDef{{EventName: "signup"}}}
		events := f.conversionEventsOrDefault()
		require.Len(t, events, 1)
		assert.Equal(t, "signup", events[0].EventName)
	})

	t.Run("defaults when empty", func(t *testing.T) {
		events := (&CampaignsFile{}).conversionEventsOrDefault()
		require.Len(t, events, 2)
		assert.Equal(t, "qr_code_scan", events[0].EventName)
		assert.Equal(t, "campaign_click", events[1].EventName)
	})
}
