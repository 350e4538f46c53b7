package hydro

import (
	"math"
	"testing"
)

// Reference conditions: water at ~70 C.
const (
	density   = 977.8   // kg/m^3
	viscosity = 4.04e-4 // Pa*s
	roughness = 1.0e-4  // m
)

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestVelocityKnownCase(t *testing.T) {
	// 0.438 kg/s through DN25: v = m / (rho * pi*d^2/4) = 0.9125 m/s.
	v := Velocity(0.438, density, 0.025)
	if !approx(v, 0.912545, 1e-5) {
		t.Errorf("Velocity = %.6f, want 0.912545", v)
	}
}

func TestVelocityDegenerateInputs(t *testing.T) {
	if v := Velocity(0, density, 0.025); v != 0 {
		t.Errorf("zero flow velocity = %f, want 0", v)
	}
	if v := Velocity(1, density, 0); v != 0 {
		t.Errorf("zero diameter velocity = %f, want 0", v)
	}
	if v := Velocity(1, 0, 0.025); v != 0 {
		t.Errorf("zero density velocity = %f, want 0", v)
	}
}

func TestDiameterForVelocityRoundTrip(t *testing.T) {
	// The diameter solved for a target velocity must reproduce that
	// velocity when fed back in.
	d := DiameterForVelocity(0.438, density, 1.5)
	if !approx(d, 0.019499, 1e-5) {
		t.Errorf("DiameterForVelocity = %.6f, want 0.019499", d)
	}
	v := Velocity(0.438, density, d)
	if !approx(v, 1.5, 1e-9) {
		t.Errorf("round-trip velocity = %.6f, want 1.5", v)
	}
}

func TestReynoldsNumberKnownCase(t *testing.T) {
	re := ReynoldsNumber(density, 0.912545, 0.025, viscosity)
	if !approx(re, 55215.7, 1.0) {
		t.Errorf("Re = %.1f, want ~55215.7", re)
	}
}

func TestFrictionFactorLaminar(t *testing.T) {
	// Below the laminar threshold: f = 64/Re.
	if f := FrictionFactor(1000, roughness, 0.025); !approx(f, 0.064, 1e-9) {
		t.Errorf("laminar f = %.6f, want 0.064", f)
	}
}

func TestFrictionFactorTurbulentSwameeJain(t *testing.T) {
	f := FrictionFactor(55215.73, roughness, 0.025)
	if !approx(f, 0.030634, 1e-5) {
		t.Errorf("turbulent f = %.6f, want 0.030634", f)
	}
}

func TestFrictionFactorNoFlow(t *testing.T) {
	if f := FrictionFactor(0, roughness, 0.025); f != 0 {
		t.Errorf("f at Re=0 = %f, want 0", f)
	}
}

func TestPressureGradientKnownCase(t *testing.T) {
	// 0.438 kg/s in DN25 loses ~499 Pa per metre.
	v := Velocity(0.438, density, 0.025)
	re := ReynoldsNumber(density, v, 0.025, viscosity)
	f := FrictionFactor(re, roughness, 0.025)
	dp := PressureGradient(f, density, v, 0.025)
	if !approx(dp, 498.88, 0.05) {
		t.Errorf("dp/L = %.2f, want ~498.88", dp)
	}
}

func TestPressureGradientDropsWithDiameter(t *testing.T) {
	// Same flow in DN32 must lose far less than in DN25.
	grad := func(d float64) float64 {
		v := Velocity(0.438, density, d)
		re := ReynoldsNumber(density, v, d, viscosity)
		return PressureGradient(FrictionFactor(re, roughness, d), density, v, d)
	}
	if g25, g32 := grad(0.025), grad(0.032); g32 >= g25 {
		t.Errorf("dp/L did not drop with diameter: DN25=%.2f DN32=%.2f", g25, g32)
	}
}

func TestVolumeFlow(t *testing.T) {
	if vol := VolumeFlow(977.8, density); !approx(vol, 1.0, 1e-12) {
		t.Errorf("VolumeFlow = %f, want 1.0", vol)
	}
	if vol := VolumeFlow(1, 0); vol != 0 {
		t.Errorf("VolumeFlow with zero density = %f, want 0", vol)
	}
}
