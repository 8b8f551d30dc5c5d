package weather

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Region is a named place tracked by the user. Regions are identified by
// their position in the saved list; two regions may share coordinates.
type Region struct {
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Weather   *Snapshot `json:"weatherInfo,omitempty"`
}

// Coordinate returns the region's position.
func (r Region) Coordinate() Coordinate {
	return Coordinate{Latitude: r.Latitude, Longitude: r.Longitude}
}

// WithSnapshot returns a copy of r carrying snap. The previous snapshot is
// replaced wholesale.
func (r Region) WithSnapshot(snap Snapshot) Region {
	return Region{
		Name:      r.Name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Weather:   &snap,
	}
}

// Snapshot is the decoded forecast payload for one coordinate pair.
// Temperatures are the provider's raw Fahrenheit values.
type Snapshot struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Currently DataPoint  `json:"currently"`
	Hourly    *DataBlock `json:"hourly,omitempty"`
	Daily     DataBlock  `json:"daily"`
}

// DataBlock groups data points over a period (hourly or daily).
type DataBlock struct {
	Summary string      `json:"summary,omitempty"`
	Icon    string      `json:"icon,omitempty"`
	Data    []DataPoint `json:"data"`
}

// DataPoint is a single observation or forecast entry.
type DataPoint struct {
	Time                int64   `json:"time"` // unix seconds
	Summary             string  `json:"summary,omitempty"`
	Icon                string  `json:"icon"`
	Temperature         float64 `json:"temperature,omitempty"`
	ApparentTemperature float64 `json:"apparentTemperature,omitempty"`
	TemperatureHigh     float64 `json:"temperatureHigh,omitempty"`
	TemperatureLow      float64 `json:"temperatureLow,omitempty"`
	TemperatureMin      float64 `json:"temperatureMin,omitempty"`
	TemperatureMax      float64 `json:"temperatureMax,omitempty"`
	Humidity            float64 `json:"humidity,omitempty"`
	WindSpeed           float64 `json:"windSpeed,omitempty"`
	PrecipProbability   float64 `json:"precipProbability,omitempty"`
}

// PlaceQuery describes a place to be resolved to coordinates.
type PlaceQuery struct {
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Place is a resolved, named location.
type Place struct {
	Name       string
	Coordinate Coordinate
}

// NewRegion is the input for adding a region. Either Coordinate or Query
// must be set.
type NewRegion struct {
	Name       string
	Coordinate *Coordinate
	Query      *PlaceQuery
}

func cloneRegions(in []Region) []Region {
	out := make([]Region, len(in))
	copy(out, in)
	return out
}
