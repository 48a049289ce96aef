// ABOUTME: Campaign definitions loaded from campaigns.yml.
// ABOUTME: Handles UTM URL construction and stable campaign ID generation.

package main

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const campaignDateLayout = "2006-01-02"

type Campaign struct {
	Name      string `yaml:"name"`
	Location  string `yaml:"location"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
	Budget    int    `yaml:"budget"`
	TargetURL string `yaml:"target_url"`
}

type ConversionEventDef struct {
	EventName   string `yaml:"event_name"`
	Description string `yaml:"description"`
}

type CampaignsFile struct {
	Campaigns        []Campaign           `yaml:"campaigns"`
	ConversionEvents []ConversionEventDef `yaml:"conversion_events"`
}

func loadCampaigns(path string) (*CampaignsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file CampaignsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, c := range file.Campaigns {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("campaign %d (%q): %w", i+1, c.Name, err)
		}
	}

	return &file, nil
}

func (c Campaign) validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := time.Parse(campaignDateLayout, c.StartDate); err != nil {
		return fmt.Errorf("invalid start_date %q (want YYYY-MM-DD)", c.StartDate)
	}
	if _, err := time.Parse(campaignDateLayout, c.EndDate); err != nil {
		return fmt.Errorf("invalid end_date %q (want YYYY-MM-DD)", c.EndDate)
	}
	if c.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %d", c.Budget)
	}
	if c.TargetURL == "" {
		return fmt.Errorf("target_url is required")
	}
	return nil
}

// ID derives a stable 8-character identifier from the campaign name and
// start date. The QR generator embeds it as utm_campaign and the report
// generator filters sessionCampaignId on it, so both must agree.
func (c Campaign) ID() string {
	sum := md5.Sum([]byte(c.Name + "_" + c.StartDate))
	return hex.EncodeToString(sum[:])[:8]
}

func (c Campaign) startsAt() time.Time {
	t, _ := time.Parse(campaignDateLayout, c.StartDate)
	return t
}

func (c Campaign) endsAt() time.Time {
	t, _ := time.Parse(campaignDateLayout, c.EndDate)
	return t
}

// covers reports whether the given day falls inside the campaign run,
// endpoints included.
func (c Campaign) covers(day time.Time) bool {
	return !day.Before(c.startsAt()) && !day.After(c.endsAt())
}

// UTMURL returns the campaign target URL decorated with UTM parameters.
// Existing query parameters are preserved; UTM keys already present in
// the target are overwritten.
func (c Campaign) UTMURL() (string, error) {
	parsed, err := url.Parse(c.TargetURL)
	if err != nil {
		return "", fmt.Errorf("invalid target_url: %w", err)
	}

	query := parsed.Query()
	query.Set("utm_source", "offline")
	query.Set("utm_medium", "print")
	query.Set("utm_campaign", c.ID())
	query.Set("utm_content", c.Location)
	query.Set("utm_term", c.Name)
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

// fileSlug makes the campaign name safe for use in output filenames.
func (c Campaign) fileSlug() string {
	s := strings.ReplaceAll(c.Name, "/", "_")
	return strings.ReplaceAll(s, " ", "_")
}

// conversionEventsOrDefault returns the configured conversion events,
// falling back to the built-in pair when campaigns.yml defines none.
func (f *CampaignsFile) conversionEventsOrDefault() []ConversionEventDef {
	if len(f.ConversionEvents) > 0 {
		return f.ConversionEvents
	}
	return []ConversionEventDef{
		{EventName: "qr_code_scan", Description: "Visit via QR code"},
		{EventName: "campaign_click", Description: "Campaign link click"},
	}
}
