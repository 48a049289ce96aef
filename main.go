// ABOUTME: CLI entry point for printad, the GA4 print-advertising measurement tool.
// ABOUTME: Maps subcommands to QR generation, GA4 configuration, and report generation.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "printad",
	Short: "Measure print-advertising effectiveness with Google Analytics 4",
	Long: `printad automates effectiveness measurement for print advertising
(flyers, posters) using Google Analytics 4.

It generates UTM-tagged QR codes for each campaign, configures the GA4
property via the Admin API, and pulls session and conversion metrics via
the Data API to build cost-per-acquisition reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the directory layout and check configuration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup()
	},
}

var generateQRCmd = &cobra.Command{
	Use:   "generate-qr",
	Short: "Generate UTM-tagged QR codes for every campaign",
	RunE: func(cmd *cobra.Command, args []string) error {
		return NewQRGenerator(campaignsPath, qrOutputDir).GenerateAll()
	},
}

var configureGA4Cmd = &cobra.Command{
	Use:   "configure-ga4",
	Short: "Apply custom dimensions, conversion events, and property settings to GA4",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigureGA4(cmd.Context())
	},
}

var reportDate string

var generateReportCmd = &cobra.Command{
	Use:   "generate-report",
	Short: "Generate the daily campaign report (yesterday by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newReportGenerator(cmd.Context())
		if err != nil {
			return err
		}
		return gen.GenerateDaily(cmd.Context(), reportDate)
	},
}

var periodStart, periodEnd string

var generatePeriodReportCmd = &cobra.Command{
	Use:   "generate-period-report",
	Short: "Generate a campaign report over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newReportGenerator(cmd.Context())
		if err != nil {
			return err
		}
		return gen.GeneratePeriod(cmd.Context(), periodStart, periodEnd)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run QR generation, GA4 configuration, and yesterday's report in sequence",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Running all steps...")
		divider := strings.Repeat("=", 60)

		// Step failures are reported but do not stop the sequence, so a
		// missing credential still lets QR generation run.
		fmt.Println("\n[1/3] QR code generation")
		if err := NewQRGenerator(campaignsPath, qrOutputDir).GenerateAll(); err != nil {
			fmt.Fprintf(os.Stderr, "QR generation failed: %v\n", err)
		}

		fmt.Println("\n" + divider)
		fmt.Println("\n[2/3] GA4 configuration")
		if err := runConfigureGA4(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "GA4 configuration failed: %v\n", err)
		}

		fmt.Println("\n" + divider)
		fmt.Println("\n[3/3] Report generation (yesterday)")
		gen, err := newReportGenerator(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "report generation failed: %v\n", err)
		} else if err := gen.GenerateDaily(cmd.Context(), ""); err != nil {
			fmt.Fprintf(os.Stderr, "report generation failed: %v\n", err)
		}

		color.New(color.FgGreen, color.Bold).Println("\nAll steps finished.")
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show configured campaigns and generated output files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo()
	},
}

var permissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Show the service account and the GA4 access steps it needs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPermissions()
	},
}

func runConfigureGA4(ctx context.Context) error {
	cfg, err := loadGA4Config(ga4ConfigPath)
	if err != nil {
		return err
	}
	setup, err := NewGA4Setup(ctx, cfg.PropertyID, campaignsPath, credentialsPath, reportOutputDir)
	if err != nil {
		return err
	}
	return setup.SetupAll(ctx)
}

func newReportGenerator(ctx context.Context) (*ReportGenerator, error) {
	cfg, err := loadGA4Config(ga4ConfigPath)
	if err != nil {
		return nil, err
	}

	file, err := loadCampaigns(campaignsPath)
	if err != nil {
		return nil, fmt.Errorf("loading campaigns: %w", err)
	}

	return NewReportGenerator(ctx, cfg.PropertyID, file.Campaigns, credentialsPath, reportOutputDir)
}

func runInfo() error {
	fmt.Print("printad - GA4 print-advertising measurement\n\n")

	file, err := loadCampaigns(campaignsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read campaigns: %v\n", err)
	} else {
		fmt.Printf("Campaigns: %d\n", len(file.Campaigns))
		for i, c := range file.Campaigns {
			fmt.Printf("\n  [%d] %s\n", i+1, c.Name)
			fmt.Printf("      location: %s\n", c.Location)
			fmt.Printf("      period:   %s to %s\n", c.StartDate, c.EndDate)
			fmt.Printf("      budget:   ¥%s\n", formatThousands(c.Budget))
		}
	}

	fmt.Println("\nOutput files:")
	if pngs, err := filepath.Glob(filepath.Join(qrOutputDir, "*.png")); err == nil {
		fmt.Printf("  - QR codes: %d\n", len(pngs))
	}
	if csvs, err := filepath.Glob(filepath.Join(reportOutputDir, "*.csv")); err == nil {
		fmt.Printf("  - reports:  %d\n", len(csvs))
	}

	return nil
}

func runPermissions() error {
	email := serviceAccountEmail(credentialsPath)
	if email == "unknown" {
		return fmt.Errorf("no service-account key found at %s", credentialsPath)
	}

	fmt.Print("GA4 permission setup\n\n")
	fmt.Printf("Service account: %s\n", email)
	fmt.Println("\nGrant it access in GA4:")
	fmt.Println("  1. Open https://analytics.google.com/")
	fmt.Println("  2. Admin > Property access management")
	fmt.Println("  3. Add user, paste the service-account address above")
	fmt.Println("  4. Assign the Editor role")
	fmt.Println("\nThen verify with: printad configure-ga4")
	return nil
}

func init() {
	generateReportCmd.Flags().StringVar(&reportDate, "date", "", "report date (YYYY-MM-DD, defaults to yesterday)")
	generatePeriodReportCmd.Flags().StringVar(&periodStart, "start-date", "", "period start (YYYY-MM-DD)")
	generatePeriodReportCmd.Flags().StringVar(&periodEnd, "end-date", "", "period end (YYYY-MM-DD)")
	_ = generatePeriodReportCmd.MarkFlagRequired("start-date")
	_ = generatePeriodReportCmd.MarkFlagRequired("end-date")

	rootCmd.AddCommand(
		setupCmd,
		generateQRCmd,
		configureGA4Cmd,
		generateReportCmd,
		generatePeriodReportCmd,
		allCmd,
		infoCmd,
		permissionsCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
