package shortlist

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spigell/applicant-pipeline/internal/applicant"
)

const (
	dateLayout  = "2006-01-02"
	daysPerYear = 365.25

	secondsPerDay = 24 * 60 * 60
)

var (
	defaultTier1Companies = []string{
		"Google", "Meta", "OpenAI", "Microsoft", "Apple",
		"Amazon", "Netflix", "Twitter", "Facebook", "Tesla",
		"Nvidia", "Adobe", "Salesforce", "Uber", "Airbnb",
	}

	defaultCurrencyRates = map[string]float64{
		"USD": 1,
		"CAD": 0.75,
		"GBP": 1.25,
		"EUR": 1.10,
		"INR": 0.012,
	}

	// Matched as substrings of the lower-cased location, so short tokens such as
	// "in" or "ca" match inside longer words.
	defaultEligibleCountries = []string{
		"us", "usa", "united states", "united states of america",
		"canada", "ca",
		"uk", "united kingdom", "great britain", "england",
		"germany", "de", "deutschland",
		"india", "in", "ind",
	}

	printer = message.NewPrinter(language.English)
)

// Criteria holds the static lookup tables and thresholds of the shortlist rule.
type Criteria struct {
	Tier1Companies    []string
	CurrencyRates     map[string]float64
	EligibleCountries []string
	MinYears          float64
	MaxHourlyRateUSD  float64
	MinAvailability   float64
}

// Verdict is the outcome of Evaluate. Reason is the pipe-delimited rationale.
type Verdict struct {
	Shortlisted bool
	Reason      string

	Years          float64
	Tier1          bool
	USDRate        float64
	ExperienceOK   bool
	CompensationOK bool
	LocationOK     bool
}

func DefaultCriteria() Criteria {
	rates := make(map[string]float64, len(defaultCurrencyRates))
	for code, rate := range defaultCurrencyRates {
		rates[code] = rate
	}

	return Criteria{
		Tier1Companies:    append([]string(nil), defaultTier1Companies...),
		CurrencyRates:     rates,
		EligibleCountries: append([]string(nil), defaultEligibleCountries...),
		MinYears:          4,
		MaxHourlyRateUSD:  100,
		MinAvailability:   20,
	}
}

// Evaluate applies the experience, compensation and location predicates. All three must hold.
func (c Criteria) Evaluate(doc *applicant.Document) Verdict {
	var (
		jobs     []applicant.Job
		salary   applicant.Salary
		location string
	)
	if doc != nil {
		jobs = doc.Experience
		if doc.Salary != nil {
			salary = *doc.Salary
		}
		if doc.Personal != nil {
			location = doc.Personal.Location
		}
	}

	v := Verdict{
		Years:   ExperienceYears(jobs),
		Tier1:   c.hasTier1(jobs),
		USDRate: c.ToUSD(salary.PreferredRate, salary.Currency),
	}

	v.ExperienceOK = v.Years >= c.MinYears || v.Tier1
	v.CompensationOK = v.USDRate <= c.MaxHourlyRateUSD && salary.Availability >= c.MinAvailability
	v.LocationOK = c.eligibleLocation(location)
	v.Shortlisted = v.ExperienceOK && v.CompensationOK && v.LocationOK

	var reasons []string

	switch {
	case v.ExperienceOK && v.Years >= c.MinYears:
		reasons = append(reasons, fmt.Sprintf("%.1f years of experience", v.Years))
	case v.ExperienceOK:
		reasons = append(reasons, "Worked at tier-1 company")
	default:
		reasons = append(reasons, "Insufficient experience")
	}

	availability := formatNumber(salary.Availability)
	if v.CompensationOK {
		reasons = append(reasons, fmt.Sprintf("Rate %s/hr, %s hrs/wk available", formatUSD(v.USDRate), availability))
	} else {
		if v.USDRate > c.MaxHourlyRateUSD {
			reasons = append(reasons, fmt.Sprintf("Rate %s/hr exceeds %s limit", formatUSD(v.USDRate), formatLimit(c.MaxHourlyRateUSD)))
		}
		if salary.Availability < c.MinAvailability {
			reasons = append(reasons, fmt.Sprintf("Only %s hrs/wk available (needs %s+)", availability, formatNumber(c.MinAvailability)))
		}
	}

	if v.LocationOK {
		reasons = append(reasons, "Location acceptable")
	} else {
		reasons = append(reasons, fmt.Sprintf("Location '%s' not in target regions", location))
	}

	v.Reason = strings.Join(reasons, " | ")
	return v
}

// ExperienceYears sums the whole days between start and end of every job with
// two parsable dates. Other jobs are skipped.
func ExperienceYears(jobs []applicant.Job) float64 {
	var total float64
	for _, job := range jobs {
		if job.Start == "" || job.End == "" {
			continue
		}

		start, err := time.Parse(dateLayout, job.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(dateLayout, job.End)
		if err != nil {
			continue
		}

		// Unix seconds rather than Duration, which saturates after about 292 years.
		days := (end.Unix() - start.Unix()) / secondsPerDay
		total += float64(days) / daysPerYear
	}

	return total
}

// ToUSD converts amount with the static rate table keyed by upper-case codes.
// Unknown currencies use a rate of 1.
func (c Criteria) ToUSD(amount float64, currency string) float64 {
	if rate, ok := c.CurrencyRates[strings.ToUpper(strings.TrimSpace(currency))]; ok {
		return amount * rate
	}

	return amount
}

func (c Criteria) hasTier1(jobs []applicant.Job) bool {
	for _, job := range jobs {
		company := strings.ToLower(job.Company)
		for _, tier1 := range c.Tier1Companies {
			tier1 = strings.ToLower(strings.TrimSpace(tier1))
			if tier1 != "" && strings.Contains(company, tier1) {
				return true
			}
		}
	}

	return false
}

func (c Criteria) eligibleLocation(location string) bool {
	if location == "" {
		return false
	}

	lower := strings.ToLower(location)
	for _, country := range c.EligibleCountries {
		country = strings.ToLower(strings.TrimSpace(country))
		if country != "" && strings.Contains(lower, country) {
			return true
		}
	}

	return false
}

func formatUSD(amount float64) string {
	return printer.Sprintf("$%.2f", amount)
}

func formatLimit(amount float64) string {
	return "$" + formatNumber(amount)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
