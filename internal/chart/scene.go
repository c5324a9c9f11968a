package chart

// Scene is a declarative drawable description of one chart render: a sized
// canvas plus an ordered shape list. It carries no chart semantics, so it can
// be translated to any 2D vector surface (SVG here, raster via export).
type Scene struct {
	Width  float64
	Height float64
	Shapes []Shape
}

// Shape is a drawable primitive
type Shape interface {
	shape()
}

// Point is a pixel coordinate
type Point struct {
	X float64
	Y float64
}

// Line is a straight stroke between two points
type Line struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
	Dashed         bool
	Opacity        float64 // 0 means fully opaque
}

// Polyline is a connected stroke through a point sequence
type Polyline struct {
	Points      []Point
	Stroke      string
	StrokeWidth float64
	Opacity     float64
}

// Rect is a filled rectangle
type Rect struct {
	X, Y, W, H float64
	Fill       string
	Opacity    float64
}

// Circle is a filled marker
type Circle struct {
	CX, CY, R float64
	Fill      string
	Opacity   float64
}

// Text is a positioned label
type Text struct {
	X, Y     float64
	Content  string
	FontSize float64
	Fill     string
	Anchor   string // start, middle, end
}

func (Line) shape()     {}
func (Polyline) shape() {}
func (Rect) shape()     {}
func (Circle) shape()   {}
func (Text) shape()     {}
