package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bher20/eratecharge/internal/billing"
	"github.com/bher20/eratecharge/pkg/seasonal"
)

var (
	chargeDate     string
	chargeQuantity string
	chargePlanFile string
	chargeJSON     bool

	summerStart   string
	summerEnd     string
	summerRate    string
	regularRate   string
	serviceCharge string
)

var chargeCmd = &cobra.Command{
	Use:   "charge",
	Short: "Compute a single charge",
	Long: `Compute the charge for a quantity on a date. The plan comes from a YAML or
JSON file (--plan) or from individual flags; flags override file values.

Examples:
  eratecharge charge --date 2021-07-01 --quantity 10 --plan plan.yaml
  eratecharge charge --date 2021-01-01 --quantity 10 \
    --summer-start 2021-06-01 --summer-end 2021-09-01 \
    --summer-rate 1 --regular-rate 2 --service-charge 3`,
	RunE: runCharge,
}

func init() {
	f := chargeCmd.Flags()
	f.StringVar(&chargeDate, "date", "", "billing date (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&chargeQuantity, "quantity", "", "consumed quantity")
	f.StringVar(&chargePlanFile, "plan", "", "plan file (YAML or JSON)")
	f.BoolVar(&chargeJSON, "json", false, "print the result as JSON")
	f.StringVar(&summerStart, "summer-start", "", "first day of summer (inclusive)")
	f.StringVar(&summerEnd, "summer-end", "", "last day of summer (inclusive)")
	f.StringVar(&summerRate, "summer-rate", "", "per-unit summer rate")
	f.StringVar(&regularRate, "regular-rate", "", "per-unit regular rate")
	f.StringVar(&serviceCharge, "service-charge", "", "flat regular service charge")
	_ = chargeCmd.MarkFlagRequired("date")
	_ = chargeCmd.MarkFlagRequired("quantity")
	rootCmd.AddCommand(chargeCmd)
}

func runCharge(cmd *cobra.Command, args []string) error {
	plan, err := loadPlan(cmd)
	if err != nil {
		return err
	}
	date, err := seasonal.ParseManagedDate(chargeDate)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(chargeQuantity)
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}

	svc := billing.NewService(billing.Config{Strict: cfg.Strict})
	resp, err := svc.Charge(cmd.Context(), billing.ChargeRequest{Date: date, Plan: plan, Quantity: qty})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if chargeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintf(out, "date:           %s\n", resp.Date)
	fmt.Fprintf(out, "tier:           %s\n", resp.Tier)
	fmt.Fprintf(out, "quantity:       %s\n", resp.Quantity)
	fmt.Fprintf(out, "rate:           %s\n", resp.Rate)
	fmt.Fprintf(out, "service charge: %s\n", resp.ServiceCharge)
	fmt.Fprintf(out, "amount:         %s\n", resp.Amount)
	return nil
}

// loadPlan reads --plan if given, then applies any individual plan flags.
func loadPlan(cmd *cobra.Command) (seasonal.Plan, error) {
	var plan seasonal.Plan
	if chargePlanFile != "" {
		data, err := os.ReadFile(chargePlanFile)
		if err != nil {
			return plan, fmt.Errorf("reading plan file: %w", err)
		}
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return plan, fmt.Errorf("parsing plan file: %w", err)
		}
	}

	flags := cmd.Flags()
	var errs []error
	setDate := func(name, raw string, dst *time.Time) {
		if !flags.Changed(name) {
			return
		}
		d, err := seasonal.ParseManagedDate(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
			return
		}
		*dst = d.Time()
	}
	setDecimal := func(name, raw string, dst *decimal.Decimal) {
		if !flags.Changed(name) {
			return
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
			return
		}
		*dst = v
	}

	setDate("summer-start", summerStart, &plan.SummerStart)
	setDate("summer-end", summerEnd, &plan.SummerEnd)
	setDecimal("summer-rate", summerRate, &plan.SummerRate)
	setDecimal("regular-rate", regularRate, &plan.RegularRate)
	setDecimal("service-charge", serviceCharge, &plan.RegularServiceCharge)

	return plan, errors.Join(errs...)
}
