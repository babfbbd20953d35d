package seasonal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Plan is a two-tier billing plan: a summer rate inside the inclusive
// [SummerStart, SummerEnd] window, and a regular rate plus a flat service
// charge everywhere else.
type Plan struct {
	SummerStart          time.Time
	SummerEnd            time.Time
	SummerRate           decimal.Decimal
	RegularRate          decimal.Decimal
	RegularServiceCharge decimal.Decimal
}

// Validate reports every structural problem with the plan. CalculateCharge
// never calls it; callers that want strict behavior do.
func (p Plan) Validate() error {
	var errs []error
	if p.SummerStart.IsZero() || p.SummerEnd.IsZero() {
		errs = append(errs, ErrMissingSummerWindow)
	} else if p.SummerStart.After(p.SummerEnd) {
		errs = append(errs, fmt.Errorf("%w: %s > %s", ErrInvertedSummer,
			formatTime(p.SummerStart), formatTime(p.SummerEnd)))
	}
	for _, r := range []struct {
		name string
		v    decimal.Decimal
	}{
		{"summerRate", p.SummerRate},
		{"regularRate", p.RegularRate},
		{"regularServiceCharge", p.RegularServiceCharge},
	} {
		if r.v.IsNegative() {
			errs = append(errs, fmt.Errorf("%w: %s=%s", ErrNegativeRate, r.name, r.v))
		}
	}
	return errors.Join(errs...)
}

// planJSON is the wire form. Dates are date-only strings or RFC 3339.
type planJSON struct {
	SummerStart          string          `json:"summerStart"`
	SummerEnd            string          `json:"summerEnd"`
	SummerRate           decimal.Decimal `json:"summerRate"`
	RegularRate          decimal.Decimal `json:"regularRate"`
	RegularServiceCharge decimal.Decimal `json:"regularServiceCharge"`
}

// planYAML keeps raw nodes so that YAML ints, floats, timestamps and quoted
// values all decode from their literal text.
type planYAML struct {
	SummerStart          yaml.Node `yaml:"summerStart"`
	SummerEnd            yaml.Node `yaml:"summerEnd"`
	SummerRate           yaml.Node `yaml:"summerRate"`
	RegularRate          yaml.Node `yaml:"regularRate"`
	RegularServiceCharge yaml.Node `yaml:"regularServiceCharge"`
}

func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(planJSON{
		SummerStart:          formatOptional(p.SummerStart),
		SummerEnd:            formatOptional(p.SummerEnd),
		SummerRate:           p.SummerRate,
		RegularRate:          p.RegularRate,
		RegularServiceCharge: p.RegularServiceCharge,
	})
}

// UnmarshalJSON rejects keys other than the five plan fields, so a misspelled
// rate cannot silently decode as zero.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var w planJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	start, err := parseOptional(w.SummerStart)
	if err != nil {
		return fmt.Errorf("summerStart: %w", err)
	}
	end, err := parseOptional(w.SummerEnd)
	if err != nil {
		return fmt.Errorf("summerEnd: %w", err)
	}
	*p = Plan{
		SummerStart:          start,
		SummerEnd:            end,
		SummerRate:           w.SummerRate,
		RegularRate:          w.RegularRate,
		RegularServiceCharge: w.RegularServiceCharge,
	}
	return nil
}

var planKeys = map[string]bool{
	"summerStart":          true,
	"summerEnd":            true,
	"summerRate":           true,
	"regularRate":          true,
	"regularServiceCharge": true,
}

// UnmarshalYAML accepts the same keys as UnmarshalJSON.
func (p *Plan) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			if k := value.Content[i].Value; !planKeys[k] {
				return fmt.Errorf("plan: line %d: unknown field %q", value.Content[i].Line, k)
			}
		}
	}
	var w planYAML
	if err := value.Decode(&w); err != nil {
		return err
	}
	start, err := parseOptional(w.SummerStart.Value)
	if err != nil {
		return fmt.Errorf("summerStart: %w", err)
	}
	end, err := parseOptional(w.SummerEnd.Value)
	if err != nil {
		return fmt.Errorf("summerEnd: %w", err)
	}
	out := Plan{SummerStart: start, SummerEnd: end}
	for _, f := range []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"summerRate", w.SummerRate.Value, &out.SummerRate},
		{"regularRate", w.RegularRate.Value, &out.RegularRate},
		{"regularServiceCharge", w.RegularServiceCharge.Value, &out.RegularServiceCharge},
	} {
		if f.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	*p = out
	return nil
}

func parseOptional(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseTime(s)
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatTime(t)
}
