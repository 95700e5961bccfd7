package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/spigell/applicant-pipeline/internal/shortlist"
)

func TestCriteriaOverrides(t *testing.T) {
	c := criteria(&ShortlistConfig{
		CurrencyRates:    map[string]float64{"aud": 0.65, "inr": 0.011},
		MaxHourlyRateUSD: 120,
	})

	defaults := shortlist.DefaultCriteria()

	if c.CurrencyRates["AUD"] != 0.65 || c.CurrencyRates["INR"] != 0.011 {
		t.Fatalf("expected upper-cased overrides, got %v", c.CurrencyRates)
	}
	if c.CurrencyRates["GBP"] != defaults.CurrencyRates["GBP"] {
		t.Fatalf("expected default GBP rate to survive, got %v", c.CurrencyRates["GBP"])
	}
	if c.MaxHourlyRateUSD != 120 || c.MinYears != defaults.MinYears || c.MinAvailability != defaults.MinAvailability {
		t.Fatalf("unexpected thresholds %+v", c)
	}
	if len(c.Tier1Companies) != len(defaults.Tier1Companies) {
		t.Fatalf("expected default tier-1 list, got %v", c.Tier1Companies)
	}

	if got := criteria(nil); got.MaxHourlyRateUSD != defaults.MaxHourlyRateUSD {
		t.Fatalf("expected defaults without config, got %+v", got)
	}
}

func TestResolveTargetFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantID  string
		wantErr bool
	}{
		{name: "single", args: []string{"--applicant", " A-1 "}, wantID: "A-1"},
		{name: "all", args: []string{"--all"}},
		{name: "both", args: []string{"--all", "-a", "A-1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "test"}
			addTargetFlags(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}

			got, err := resolveTarget(cmd)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.applicantID != tt.wantID || got.all() != (tt.wantID == "") {
				t.Fatalf("unexpected target %+v", got)
			}
		})
	}
}
