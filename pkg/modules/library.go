package modules

import "math"

// Library returns fresh definitions of every built-in module, shapes first.
func Library() []*Definition {
	return []*Definition{
		// 3D primitives
		sphereModule(),
		cubeModule(),
		cylinderModule(),
		// 2D primitives
		squareModule(),
		circleModule(),
		polygonModule(),
		// CSG
		unionModule(),
		intersectionModule(),
		differenceModule(),
		// transforms
		translateModule(),
		rotateModule(),
		scaleModule(),
		shellModule(),
		unitModule(),
		// extrusion and layout
		linearExtrudeModule(),
		rotateExtrudeModule(),
		packModule(),
	}
}

func deg2rad(x float64) float64 { return x * math.Pi / 180 }

func rad2deg(x float64) float64 { return x * 180 / math.Pi }

// toInterval spans a bare length from the origin, or around it when centered.
func toInterval(center bool, w float64) (float64, float64) {
	if center {
		return -w / 2, w / 2
	}
	return 0, w
}
