package models

// CoordSource identifies which coordinate field a raw event carried
type CoordSource int

const (
	CoordNone   CoordSource = iota // no usable coordinate
	CoordSingle                    // direct coords field
	CoordMulti                     // locations list
)

// GeoPoint represents a geographic coordinate (WGS 84)
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RawEvent mirrors one entry of the pre-built event dataset.
// Fields are optional and loosely shaped; decoding is lenient and
// validation happens once in the loader, not at use sites.
type RawEvent struct {
	Label     string        `json:"label"`
	Date      *RawDate      `json:"date,omitempty"`
	Coords    *GeoPoint     `json:"coords,omitempty"`
	Locations []RawLocation `json:"locations,omitempty"`
	Wikipedia string        `json:"wikipedia,omitempty"`
}

// RawDate wraps the partial-precision timestamp of an event
type RawDate struct {
	PointInTime string `json:"point_in_time,omitempty"`
}

// RawLocation is one sub-location of a multi-location event
type RawLocation struct {
	Coords *GeoPoint `json:"coords,omitempty"`
}

// Event 经过一次性校验后的事件记录
// 坐标来源和日期精度在加载时确定，之后不再做形状判断
type Event struct {
	Index     int         // position in the dataset, preserved in output order
	Title     string      // defaults to "Untitled"
	Date      EventDate   // tagged date variant
	Source    CoordSource // which variant the coordinates came from
	Coords    []GeoPoint  // flattened coordinate list, len 0 allowed
	Wikipedia string      // optional encyclopedia page URL
}

// DatePrecision tags how much of a timestamp the dataset provided
type DatePrecision int

const (
	PrecisionUnknown   DatePrecision = iota // absent date
	PrecisionYear                           // "1969"
	PrecisionYearMonth                      // "1969-07"
	PrecisionTimestamp                      // "1969-07-20T16:00:00Z"
	PrecisionOpaque                         // unparseable, kept verbatim
)

// EventDate is the tagged union over partial-precision dates
type EventDate struct {
	Precision DatePrecision
	Raw       string // original string as shipped in the dataset
}
