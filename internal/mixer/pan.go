package mixer

import "math"

const piOver4 = math.Pi / 4

func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }
func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }

func round32(x float32) int32 { return int32(math.Round(float64(x))) }
