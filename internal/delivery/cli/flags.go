package cli

import (
	"fmt"
	"time"

	"dental-center/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Layouts accepted for appointment times; values without a zone are read in the configured location
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func parseTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range timeLayouts[1:] {
		if t, err := time.ParseInLocation(layout, value, locationOrUTC(loc)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use RFC3339 or YYYY-MM-DDTHH:MM)", value)
}

func parseDay(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, locationOrUTC(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q (use YYYY-MM-DD)", value)
	}
	return t, nil
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// changedString returns &value when the flag was given on the command line
func changedString(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func changedTime(cmd *cobra.Command, name, value string, loc *time.Location) (*time.Time, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	t, err := parseTime(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func changedCost(cmd *cobra.Command, name, value string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	cost, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid cost %q: %w", value, err)
	}
	return &cost, nil
}

func changedStatus(cmd *cobra.Command, name, value string) *entity.IncidentStatus {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	status := entity.IncidentStatus(value)
	return &status
}
