package analyzer

// BoundingBox is an inclusive latitude/longitude rectangle.
type BoundingBox struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLng float64 `yaml:"max_lng"`
}

// Contains reports whether (lat, lng) lies inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// HongKong covers the KMB service area with some margin.
var HongKong = BoundingBox{MinLat: 22.1, MaxLat: 22.6, MinLng: 113.8, MaxLng: 114.5}

// AuditOptions controls bounds and exclusions for a store audit.
type AuditOptions struct {
	Bounds        BoundingBox
	ExcludeTables []string
}

// DefaultAuditOptions returns the Hong Kong bounding box and no exclusions.
func DefaultAuditOptions() AuditOptions {
	return AuditOptions{Bounds: HongKong}
}
