package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/i474232898/regional-weather/internal/common"
)

// Unit is a display temperature unit. Snapshots always hold Fahrenheit.
type Unit string

const (
	Fahrenheit Unit = "fahrenheit"
	Celsius    Unit = "celsius"
)

// ParseUnit accepts "fahrenheit"/"f", "celsius"/"c" (any case). An empty
// string selects Fahrenheit.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "f", "fahrenheit":
		return Fahrenheit, nil
	case "c", "celsius":
		return Celsius, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// Display converts a raw Fahrenheit value for presentation in u.
func (u Unit) Display(fahrenheit float64) int {
	if u == Celsius {
		return int(math.Round((fahrenheit - 32) / 1.8))
	}
	return int(fahrenheit)
}

// RegionSummary is one row of the region list.
type RegionSummary struct {
	Index       int       `json:"index"`
	Name        string    `json:"name"`
	Temperature *int      `json:"temperature,omitempty"`
	Unit        Unit      `json:"unit"`
	Icon        string    `json:"icon,omitempty"`
	Condition   Condition `json:"condition"`
}

// DayView is one daily forecast row of the detail page.
type DayView struct {
	Date      time.Time `json:"date"`
	Weekday   string    `json:"weekday"`
	Icon      string    `json:"icon"`
	Condition Condition `json:"condition"`
	High      int       `json:"high"`
	Low       int       `json:"low"`
}

// RegionDetail is a page of the detail view.
type RegionDetail struct {
	Page        int       `json:"page"`
	PageCount   int       `json:"pageCount"`
	Name        string    `json:"name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Timezone    string    `json:"timezone,omitempty"`
	Unit        Unit      `json:"unit"`
	Summary     string    `json:"summary,omitempty"`
	Temperature *int      `json:"temperature,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Condition   Condition `json:"condition"`
	Days        []DayView `json:"days"`
}

// Summarize builds the list row for the region at index.
func Summarize(index int, r Region, unit Unit) RegionSummary {
	s := RegionSummary{
		Index:     index,
		Name:      r.Name,
		Unit:      unit,
		Condition: ConditionUnknown,
	}
	if r.Weather == nil {
		return s
	}
	t := unit.Display(r.Weather.Currently.Temperature)
	s.Temperature = &t
	s.Icon = r.Weather.Currently.Icon
	s.Condition = ConditionFromIcon(s.Icon)
	return s
}

// Detail builds the detail page for the region at page out of pageCount.
// Weekdays are computed in the snapshot's timezone, falling back to UTC.
func Detail(page, pageCount int, r Region, unit Unit) RegionDetail {
	d := RegionDetail{
		Page:      page,
		PageCount: pageCount,
		Name:      r.Name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Unit:      unit,
		Condition: ConditionUnknown,
		Days:      []DayView{},
	}
	if r.Weather == nil {
		return d
	}

	snap := r.Weather
	d.Timezone = snap.Timezone
	d.Summary = snap.Currently.Summary
	t := unit.Display(snap.Currently.Temperature)
	d.Temperature = &t
	d.Icon = snap.Currently.Icon
	d.Condition = ConditionFromIcon(d.Icon)

	loc := timezone(snap.Timezone)
	for _, p := range snap.Daily.Data {
		day := time.Unix(p.Time, 0).In(loc)
		d.Days = append(d.Days, DayView{
			Date:      day,
			Weekday:   day.Weekday().String(),
			Icon:      p.Icon,
			Condition: ConditionFromIcon(p.Icon),
			High:      unit.Display(p.TemperatureHigh),
			Low:       unit.Display(p.TemperatureMin),
		})
	}
	return d
}

// ConditionFromIcon maps a provider icon identifier to a Condition.
func ConditionFromIcon(icon string) Condition {
	icon = strings.ToLower(icon)
	switch {
	case icon == "":
		return ConditionUnknown
	case common.HasAny(icon, "thunderstorm", "tornado", "hail"):
		return ConditionStorm
	case common.HasAny(icon, "snow", "sleet"):
		return ConditionSnow
	case common.HasAny(icon, "rain"):
		return ConditionRain
	case common.HasAny(icon, "fog"):
		return ConditionMist
	case common.HasAny(icon, "cloudy"):
		return ConditionCloudy
	case common.HasAny(icon, "clear"):
		return ConditionClear
	default:
		return ConditionUnknown
	}
}

func timezone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
