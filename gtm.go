// ABOUTME: Emits a Google Tag Manager setup-helper JSON.
// ABOUTME: Describes UTM variable mappings, the GA4 configuration tag, and conversion-event tags to create by hand.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type gtmHelper struct {
	GeneratedDate       string                  `json:"generated_date"`
	UTMParameterMapping map[string]gtmVariable  `json:"utm_parameter_mapping"`
	GA4ConfigurationTag gtmConfigurationTag     `json:"ga4_configuration_tag"`
	ConversionEventTags []gtmEventTag           `json:"conversion_event_tags"`
	RecommendedTriggers []gtmRecommendedTrigger `json:"recommended_triggers"`
}

type gtmVariable struct {
	VariableName  string `json:"variable_name"`
	VariableType  string `json:"variable_type"`
	ComponentType string `json:"component_type"`
	QueryKey      string `json:"query_key"`
}

type gtmConfigurationTag struct {
	TagName     string          `json:"tag_name"`
	TagType     string          `json:"tag_type"`
	Trigger     string          `json:"trigger"`
	FieldsToSet []gtmFieldToSet `json:"fields_to_set"`
}

type gtmFieldToSet struct {
	FieldName string `json:"field_name"`
	Value     string `json:"value"`
}

type gtmEventTag struct {
	TagName    string            `json:"tag_name"`
	EventName  string            `json:"event_name"`
	Trigger    string            `json:"trigger"`
	Parameters map[string]string `json:"parameters"`
}

type gtmRecommendedTrigger struct {
	TriggerName string   `json:"trigger_name"`
	TriggerType string   `json:"trigger_type"`
	Conditions  []string `json:"conditions"`
}

var utmQueryKeys = []struct {
	key          string
	variableName string
}{
	{"utm_source", "{{UTM Source}}"},
	{"utm_medium", "{{UTM Medium}}"},
	{"utm_campaign", "{{UTM Campaign}}"},
	{"utm_content", "{{UTM Content}}"},
	{"utm_term", "{{UTM Term}}"},
}

func buildGTMHelper(now time.Time) gtmHelper {
	mapping := make(map[string]gtmVariable, len(utmQueryKeys))
	fields := make([]gtmFieldToSet, 0, len(utmQueryKeys))
	for _, utm := range utmQueryKeys {
		mapping[utm.key] = gtmVariable{
			VariableName:  utm.variableName,
			VariableType:  "URL",
			ComponentType: "Query",
			QueryKey:      utm.key,
		}
		fields = append(fields, gtmFieldToSet{FieldName: utm.key, Value: utm.variableName})
	}

	return gtmHelper{
		GeneratedDate:       now.Format(time.RFC3339),
		UTMParameterMapping: mapping,
		GA4ConfigurationTag: gtmConfigurationTag{
			TagName:     "GA4 - UTM Parameter Mapping",
			TagType:     "Google Analytics: GA4 Configuration",
			Trigger:     "All Pages",
			FieldsToSet: fields,
		},
		ConversionEventTags: []gtmEventTag{
			{
				TagName:   "GA4 - App Download Click",
				EventName: "app_download",
				Trigger:   "Click - App Download Button",
				Parameters: map[string]string{
					"app_platform":    "{{Click Text}}",
					"button_location": "{{Click Classes}}",
				},
			},
			{
				TagName:   "GA4 - QR Code Scan",
				EventName: "qr_code_scan",
				Trigger:   "Page View - UTM Source equals QR",
				Parameters: map[string]string{
					"campaign_name": "{{UTM Campaign}}",
					"scan_source":   "{{UTM Content}}",
				},
			},
		},
		RecommendedTriggers: []gtmRecommendedTrigger{
			{
				TriggerName: "Click - App Download Button",
				TriggerType: "Click - All Elements",
				Conditions: []string{
					`Click Classes contains "app-download"`,
					`OR Click ID equals "download-app"`,
					`OR Click Text contains "Download"`,
				},
			},
			{
				TriggerName: "Page View - UTM Source equals QR",
				TriggerType: "Page View",
				Conditions: []string{
					`{{UTM Source}} equals "qr"`,
				},
			},
		},
	}
}

func writeGTMHelper(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(buildGTMHelper(time.Now()), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	fmt.Printf("GTM setup helper written: %s\n", path)
	fmt.Println("  Use it as a reference when creating GTM variables and tags.")
	return nil
}
