// ABOUTME: Configuration management for the print-ad measurement tool.
// ABOUTME: Loads GA4 property settings and checks the working-directory layout.

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	campaignsPath   = "campaigns.yml"
	ga4ConfigPath   = "config/ga4_config.json"
	credentialsPath = "config/credentials.json"
	qrOutputDir     = "output/qr_codes"
	reportOutputDir = "output/reports"
)

type GA4Config struct {
	PropertyID    string `json:"property_id"`
	MeasurementID string `json:"measurement_id"`
}

func loadGA4Config(path string) (*GA4Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg GA4Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.PropertyID == "" {
		return nil, fmt.Errorf("%s: property_id is not set", path)
	}

	return &cfg, nil
}

// serviceAccountEmail extracts client_email from a service-account key
// file. Used in permission-error hints; returns "unknown" on any failure
// since the hint is best-effort.
func serviceAccountEmail(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}

	var creds struct {
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(data, &creds); err != nil || creds.ClientEmail == "" {
		return "unknown"
	}

	return creds.ClientEmail
}

const ga4ConfigTemplate = `{
  "property_id": "YOUR_GA4_PROPERTY_ID",
  "measurement_id": "YOUR_MEASUREMENT_ID"
}`

// runSetup creates the expected directory layout and reports which
// required files are still missing.
func runSetup() error {
	fmt.Println("Starting initial setup...")

	for _, dir := range []string{"config", qrOutputDir, reportOutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Printf("✓ directory: %s\n", dir)
	}

	required := []struct {
		path        string
		description string
	}{
		{campaignsPath, "campaign definitions"},
		{credentialsPath, "Google Cloud service-account key"},
		{ga4ConfigPath, "GA4 property settings"},
	}

	var missing []string
	for _, f := range required {
		if _, err := os.Stat(f.path); err != nil {
			missing = append(missing, f.path)
			fmt.Fprintf(os.Stderr, "✗ %s not found: %s\n", f.description, f.path)
		} else {
			fmt.Printf("✓ %s: %s\n", f.description, f.path)
		}
	}

	if len(missing) == 0 {
		fmt.Println("\nAll configuration files are in place.")
		return nil
	}

	fmt.Fprintln(os.Stderr, "\nCreate the following files before running other commands:")
	for _, path := range missing {
		fmt.Fprintf(os.Stderr, "  - %s\n", path)
	}

	for _, path := range missing {
		if path == ga4ConfigPath {
			fmt.Printf("\nTemplate for %s:\n%s\n", ga4ConfigPath, ga4ConfigTemplate)
		}
	}

	return nil
}
