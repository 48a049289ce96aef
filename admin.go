// ABOUTME: GA4 Admin API client for property configuration.
// ABOUTME: Idempotently creates custom dimensions, conversion events, enhanced measurement, and data retention settings.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	analyticsadmin "google.golang.org/api/analyticsadmin/v1alpha"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// customDimensionDefs are the event-scoped dimensions the measurement
// setup depends on: campaign metadata pushed by GTM plus the raw UTM
// parameters.
var customDimensionDefs = []struct {
	parameterName string
	displayName   string
	description   string
}{
	{"campaign_id", "Campaign ID", "Print campaign identifier"},
	{"campaign_name", "Campaign Name", "Print campaign name"},
	{"campaign_location", "Distribution Location", "Where the print material was distributed"},
	{"print_medium", "Print Medium Type", "Flyer, poster, or other print medium"},
	{"utm_source", "UTM Source", "Traffic source (e.g. flyer, poster)"},
	{"utm_medium", "UTM Medium", "Marketing medium (e.g. print, offline)"},
	{"utm_campaign", "UTM Campaign", "Campaign identifier"},
	{"utm_content", "UTM Content", "Ad content identifier"},
	{"utm_term", "UTM Term", "Search keyword (optional)"},
}

type GA4Setup struct {
	svc           *analyticsadmin.Service
	propertyID    string
	campaignsFile string
	credsFile     string
	reportDir     string
}

// NewGA4Setup authenticates against the Admin API with the service
// account key. Extra client options are for tests; by default the
// credentials file and edit scope are used.
func NewGA4Setup(ctx context.Context, propertyID, campaignsFile, credsFile, reportDir string, opts ...option.ClientOption) (*GA4Setup, error) {
	if len(opts) == 0 {
		if _, err := os.Stat(credsFile); err != nil {
			return nil, fmt.Errorf("service-account key not found: %s", credsFile)
		}
		opts = []option.ClientOption{
			option.WithCredentialsFile(credsFile),
			option.WithScopes(analyticsadmin.AnalyticsEditScope),
		}
	}

	svc, err := analyticsadmin.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Admin API client: %w", err)
	}

	return &GA4Setup{
		svc:           svc,
		propertyID:    propertyID,
		campaignsFile: campaignsFile,
		credsFile:     credsFile,
		reportDir:     reportDir,
	}, nil
}

func (s *GA4Setup) parent() string {
	return "properties/" + s.propertyID
}

// SetupAll runs every configuration step in order. Individual step
// failures are reported and do not stop later steps, so a partially
// permissioned service account still applies what it can.
func (s *GA4Setup) SetupAll(ctx context.Context) error {
	fmt.Printf("Configuring GA4 property %s...\n", s.propertyID)

	s.setupCustomDimensions(ctx)
	s.setupEnhancedMeasurement(ctx)
	s.setupDataRetention(ctx)
	s.setupConversionEvents(ctx)

	if err := s.saveSetupReport(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  warning: could not save setup report: %v\n", err)
	}

	if err := writeGTMHelper(filepath.Join(s.reportDir, "gtm_setup_helper.json")); err != nil {
		fmt.Fprintf(os.Stderr, "  warning: could not write GTM helper: %v\n", err)
	}

	color.New(color.FgGreen, color.Bold).Println("\nGA4 configuration finished.")
	fmt.Println("\nNext steps:")
	fmt.Println("1. Configure custom events in Google Tag Manager")
	fmt.Println("2. Map UTM parameters to the custom dimensions in GTM")
	fmt.Println("3. Use the custom dimensions in GA4 exploration reports")
	fmt.Println("4. Wire conversion-event triggers in GTM (see gtm_setup_helper.json)")
	return nil
}

func (s *GA4Setup) setupCustomDimensions(ctx context.Context) {
	fmt.Println("\nCustom dimensions...")

	existing, err := s.listCustomDimensions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: listing custom dimensions failed: %v\n", err)
	}

	byParameter := make(map[string]bool, len(existing))
	for _, dim := range existing {
		byParameter[dim.ParameterName] = true
	}

	for _, def := range customDimensionDefs {
		if byParameter[def.parameterName] {
			fmt.Printf("  - skip: %s (already exists)\n", def.displayName)
			continue
		}

		dim := &analyticsadmin.GoogleAnalyticsAdminV1alphaCustomDimension{
			ParameterName: def.parameterName,
			DisplayName:   def.displayName,
			Description:   def.description,
			Scope:         "EVENT",
		}
		_, err := s.svc.Properties.CustomDimensions.Create(s.parent(), dim).Context(ctx).Do()
		if err != nil {
			s.reportAdminError(fmt.Sprintf("creating dimension %s", def.displayName), err)
			continue
		}
		fmt.Printf("  ✓ created: %s (%s)\n", def.displayName, def.parameterName)
	}
}

func (s *GA4Setup) listCustomDimensions(ctx context.Context) ([]*analyticsadmin.GoogleAnalyticsAdminV1alphaCustomDimension, error) {
	var dims []*analyticsadmin.GoogleAnalyticsAdminV1alphaCustomDimension
	err := s.svc.Properties.CustomDimensions.List(s.parent()).Pages(ctx, func(page *analyticsadmin.GoogleAnalyticsAdminV1alphaListCustomDimensionsResponse) error {
		dims = append(dims, page.CustomDimensions...)
		return nil
	})
	return dims, err
}

func (s *GA4Setup) setupEnhancedMeasurement(ctx context.Context) {
	fmt.Println("\nEnhanced measurement...")

	streams, err := s.listDataStreams(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: listing data streams failed: %v\n", err)
		return
	}

	for _, stream := range streams {
		if stream.Type != "WEB_DATA_STREAM" {
			continue
		}

		name := stream.Name + "/enhancedMeasurementSettings"
		settings, err := s.svc.Properties.DataStreams.GetEnhancedMeasurementSettings(name).Context(ctx).Do()
		if err != nil {
			fmt.Fprintf(os.Stderr, "  warning: reading enhanced measurement for %s failed: %v\n", stream.DisplayName, err)
			continue
		}

		settings.StreamEnabled = true
		settings.ScrollsEnabled = true
		settings.OutboundClicksEnabled = true
		settings.SiteSearchEnabled = true
		settings.VideoEngagementEnabled = true
		settings.FileDownloadsEnabled = true
		settings.FormInteractionsEnabled = true

		_, err = s.svc.Properties.DataStreams.UpdateEnhancedMeasurementSettings(name, settings).
			UpdateMask("stream_enabled,scrolls_enabled,outbound_clicks_enabled,site_search_enabled,video_engagement_enabled,file_downloads_enabled,form_interactions_enabled").
			Context(ctx).Do()
		if err != nil {
			fmt.Fprintf(os.Stderr, "  warning: updating enhanced measurement for %s failed: %v\n", stream.DisplayName, err)
			continue
		}

		fmt.Printf("  ✓ enhanced measurement enabled: %s\n", stream.DisplayName)
	}
}

func (s *GA4Setup) listDataStreams(ctx context.Context) ([]*analyticsadmin.GoogleAnalyticsAdminV1alphaDataStream, error) {
	var streams []*analyticsadmin.GoogleAnalyticsAdminV1alphaDataStream
	err := s.svc.Properties.DataStreams.List(s.parent()).Pages(ctx, func(page *analyticsadmin.GoogleAnalyticsAdminV1alphaListDataStreamsResponse) error {
		streams = append(streams, page.DataStreams...)
		return nil
	})
	return streams, err
}

func (s *GA4Setup) setupDataRetention(ctx context.Context) {
	fmt.Println("\nData retention...")

	name := s.parent() + "/dataRetentionSettings"
	settings, err := s.svc.Properties.GetDataRetentionSettings(name).Context(ctx).Do()
	if err != nil {
		s.reportAdminError("reading data retention settings", err)
		return
	}

	settings.EventDataRetention = "FOURTEEN_MONTHS"
	settings.ResetUserDataOnNewActivity = true
	settings.ForceSendFields = append(settings.ForceSendFields, "ResetUserDataOnNewActivity")

	_, err = s.svc.Properties.UpdateDataRetentionSettings(name, settings).
		UpdateMask("event_data_retention,reset_user_data_on_new_activity").
		Context(ctx).Do()
	if err != nil {
		s.reportAdminError("updating data retention settings", err)
		return
	}

	fmt.Println("  ✓ event data retention set to 14 months")
	fmt.Println("  ✓ reset user data on new activity: enabled")
}

func (s *GA4Setup) setupConversionEvents(ctx context.Context) {
	fmt.Println("\nConversion events...")

	events := defaultConversionEvents(s.campaignsFile)

	existing, err := s.listConversionEvents(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: listing conversion events failed: %v\n", err)
	}

	byName := make(map[string]bool, len(existing))
	for _, ev := range existing {
		byName[ev.EventName] = true
	}

	for _, def := range events {
		if byName[def.EventName] {
			fmt.Printf("  - skip: %s (already exists)\n", def.EventName)
			continue
		}

		ev := &analyticsadmin.GoogleAnalyticsAdminV1alphaConversionEvent{EventName: def.EventName}
		_, err := s.svc.Properties.ConversionEvents.Create(s.parent(), ev).Context(ctx).Do()
		if err != nil {
			s.reportAdminError(fmt.Sprintf("creating conversion event %s", def.EventName), err)
			continue
		}
		fmt.Printf("  ✓ created: %s\n", def.EventName)
	}
}

// defaultConversionEvents reads the conversion-event list from the
// campaigns file, falling back to the built-in defaults when the file is
// missing or defines none.
func defaultConversionEvents(campaignsFile string) []ConversionEventDef {
	file, err := loadCampaigns(campaignsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: %v; using default conversion events\n", err)
		file = &CampaignsFile{}
	}
	return file.conversionEventsOrDefault()
}

func (s *GA4Setup) listConversionEvents(ctx context.Context) ([]*analyticsadmin.GoogleAnalyticsAdminV1alphaConversionEvent, error) {
	var events []*analyticsadmin.GoogleAnalyticsAdminV1alphaConversionEvent
	err := s.svc.Properties.ConversionEvents.List(s.parent()).Pages(ctx, func(page *analyticsadmin.GoogleAnalyticsAdminV1alphaListConversionEventsResponse) error {
		events = append(events, page.ConversionEvents...)
		return nil
	})
	return events, err
}

type setupReport struct {
	SetupDate        string             `json:"setup_date"`
	PropertyID       string             `json:"property_id"`
	CustomDimensions []dimensionSummary `json:"custom_dimensions"`
	DataStreams      []streamSummary    `json:"data_streams"`
	ConversionEvents []eventSummary     `json:"conversion_events"`
}

type dimensionSummary struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	ParameterName string `json:"parameter_name"`
	Scope         string `json:"scope"`
}

type streamSummary struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	Type          string `json:"type"`
	MeasurementID string `json:"measurement_id,omitempty"`
	DefaultURI    string `json:"default_uri,omitempty"`
}

type eventSummary struct {
	EventName string `json:"event_name"`
}

// saveSetupReport snapshots the property state after configuration so
// the applied setup can be reviewed or diffed later.
func (s *GA4Setup) saveSetupReport(ctx context.Context) error {
	report := setupReport{
		SetupDate:  time.Now().Format(time.RFC3339),
		PropertyID: s.propertyID,
	}

	dims, err := s.listCustomDimensions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: listing custom dimensions failed: %v\n", err)
	}
	for _, d := range dims {
		report.CustomDimensions = append(report.CustomDimensions, dimensionSummary{
			Name:          d.Name,
			DisplayName:   d.DisplayName,
			ParameterName: d.ParameterName,
			Scope:         d.Scope,
		})
	}

	streams, err := s.listDataStreams(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: listing data streams failed: %v\n", err)
	}
	for _, st := range streams {
		summary := streamSummary{
			Name:        st.Name,
			DisplayName: st.DisplayName,
			Type:        st.Type,
		}
		if st.WebStreamData != nil {
			summary.MeasurementID = st.WebStreamData.MeasurementId
			summary.DefaultURI = st.WebStreamData.DefaultUri
		}
		report.DataStreams = append(report.DataStreams, summary)
	}

	events, err := s.listConversionEvents(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  warning: listing conversion events failed: %v\n", err)
	}
	for _, ev := range events {
		report.ConversionEvents = append(report.ConversionEvents, eventSummary{EventName: ev.EventName})
	}

	path := filepath.Join(s.reportDir, "ga4_setup_report.json")
	if err := os.MkdirAll(s.reportDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	fmt.Printf("\nSetup report saved: %s\n", path)
	return nil
}

// reportAdminError prints an Admin API failure with actionable hints for
// the common permission and quota cases.
func (s *GA4Setup) reportAdminError(action string, err error) {
	red := color.New(color.FgRed)

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusForbidden:
			red.Fprintf(os.Stderr, "  ✗ permission denied: %s\n", action)
			fmt.Fprintln(os.Stderr, "    The service account needs Editor access on the GA4 property:")
			fmt.Fprintln(os.Stderr, "    Admin > Property access management > add the account with the Editor role")
			fmt.Fprintf(os.Stderr, "    service account: %s\n", serviceAccountEmail(s.credsFile))
			return
		case http.StatusTooManyRequests:
			red.Fprintf(os.Stderr, "  ✗ quota exceeded: %s\n", action)
			fmt.Fprintln(os.Stderr, "    GA4 allows at most 50 event-scoped custom dimensions per property")
			return
		}
	}

	red.Fprintf(os.Stderr, "  ✗ %s: %v\n", action, err)
}
