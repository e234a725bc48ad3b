package models

// GeoJSON 基础结构
// 遵循 RFC 7946 规范，点要素坐标为 [lng, lat]

// Position 表示一个坐标点 [lng, lat]
type Position [2]float64

// Lng 返回经度
func (p Position) Lng() float64 { return p[0] }

// Lat 返回纬度
func (p Position) Lat() float64 { return p[1] }

// Geometry GeoJSON 几何对象
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// Feature GeoJSON 要素
type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// FeatureCollection GeoJSON 要素集合
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection 创建新的要素集合
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: []Feature{},
	}
}

// AddFeature 添加要素
func (fc *FeatureCollection) AddFeature(f Feature) {
	fc.Features = append(fc.Features, f)
}

// NewPointFeature 创建点要素
func NewPointFeature(lng, lat float64, props map[string]interface{}) Feature {
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: Position{lng, lat},
		},
		Properties: props,
	}
}

// Lng 返回点要素的经度，仅对 Point 几何有效
func (f Feature) Lng() float64 {
	if pos, ok := f.Geometry.Coordinates.(Position); ok {
		return pos.Lng()
	}
	return 0
}

// Lat 返回点要素的纬度
func (f Feature) Lat() float64 {
	if pos, ok := f.Geometry.Coordinates.(Position); ok {
		return pos.Lat()
	}
	return 0
}
