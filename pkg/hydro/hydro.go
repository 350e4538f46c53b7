// Package hydro provides the fluid-mechanics primitives used to size
// hot-water pipes: flow/velocity/diameter relations, Reynolds number,
// Darcy friction factor, and the Darcy-Weisbach pressure gradient.
package hydro

import "math"

// ReynoldsLaminarMax is the Reynolds number below which flow is treated
// as laminar.
const ReynoldsLaminarMax = 2300.0

// FlowArea returns the cross-sectional area of a circular pipe.
func FlowArea(diameterM float64) float64 {
	return math.Pi * diameterM * diameterM / 4
}

// Velocity returns the mean flow velocity (m/s) for a mass flow through
// a circular pipe. Zero for non-positive diameter, density, or flow.
func Velocity(massFlowKgS, densityKgM3, diameterM float64) float64 {
	if massFlowKgS <= 0 || densityKgM3 <= 0 || diameterM <= 0 {
		return 0
	}
	return massFlowKgS / (densityKgM3 * FlowArea(diameterM))
}

// DiameterForVelocity returns the diameter (m) at which the given mass
// flow travels at exactly the given velocity. Zero for non-positive
// inputs.
func DiameterForVelocity(massFlowKgS, densityKgM3, velocityMS float64) float64 {
	if massFlowKgS <= 0 || densityKgM3 <= 0 || velocityMS <= 0 {
		return 0
	}
	return math.Sqrt(4 * massFlowKgS / (densityKgM3 * math.Pi * velocityMS))
}

// ReynoldsNumber returns Re = rho*v*d/mu. Zero for non-positive velocity.
func ReynoldsNumber(densityKgM3, velocityMS, diameterM, viscosityPaS float64) float64 {
	if velocityMS <= 0 || viscosityPaS <= 0 {
		return 0
	}
	return densityKgM3 * velocityMS * diameterM / viscosityPaS
}

// FrictionFactor returns the Darcy friction factor for the given
// Reynolds number, pipe roughness, and diameter. Laminar flow uses
// f = 64/Re; turbulent flow uses the Swamee-Jain approximation of the
// Colebrook equation. Zero Reynolds number (no flow) yields 0.
func FrictionFactor(reynolds, roughnessM, diameterM float64) float64 {
	if reynolds <= 0 {
		return 0
	}
	if reynolds < ReynoldsLaminarMax {
		return 64 / reynolds
	}
	term := roughnessM/(3.7*diameterM) + 5.74/math.Pow(reynolds, 0.9)
	lg := math.Log10(term)
	return 0.25 / (lg * lg)
}

// PressureGradient returns the Darcy-Weisbach pressure loss per metre
// of pipe: dp/L = f * rho * v^2 / (2*d). Zero for non-positive diameter.
func PressureGradient(frictionFactor, densityKgM3, velocityMS, diameterM float64) float64 {
	if diameterM <= 0 {
		return 0
	}
	return frictionFactor * densityKgM3 * velocityMS * velocityMS / (2 * diameterM)
}

// VolumeFlow converts a mass flow to a volume flow (m^3/s).
// Zero for non-positive density.
func VolumeFlow(massFlowKgS, densityKgM3 float64) float64 {
	if densityKgM3 <= 0 {
		return 0
	}
	return massFlowKgS / densityKgM3
}
