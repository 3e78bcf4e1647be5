package domain

// A named location to visit.
// Names need not be unique; they are only used to match matrix rows when a
// caller has no positional mapping.
type Point struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

func (p Point) Coordinates() Coordinates { return Coordinates{Lon: p.Lon, Lat: p.Lat} }
