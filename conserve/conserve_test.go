package conserve

import (
	"math"
	"testing"
)

func flatG0(n int) []float64 {
	g0 := make([]float64, n+1)
	for i := range g0 {
		g0[i] = 1.0
	}
	return g0
}

func TestRescaleDensityPreservesIntegral(tst *testing.T) {
	n := 10
	g0 := flatG0(n)
	ne := make([]float32, n)
	for i := range ne {
		ne[i] = float32(1e20 * (1 + 0.1*float64(i)))
	}
	target := Integral(ne, g0, 5)

	// perturb (simulate flattening) then rescale back
	for i := 0; i <= 5; i++ {
		ne[i] = 2e20
	}
	relErr := RescaleDensity(ne, g0, 5, target)
	if relErr > DefaultTolerance {
		tst.Fatalf("relative error %v exceeds tolerance %v", relErr, DefaultTolerance)
	}
}

func TestRescaleEnergyUsesNewDensity(tst *testing.T) {
	n := 10
	g0 := flatG0(n)
	ne := make([]float32, n)
	ti := make([]float32, n)
	for i := range ne {
		ne[i] = float32(1e20)
		ti[i] = float32(1000 + 50*float64(i))
	}
	targetEnergy := 0.0
	for i := 0; i <= 5; i++ {
		targetEnergy += float64(ti[i]) * float64(ne[i])
	}

	neNew := make([]float32, n)
	copy(neNew, ne)
	for i := 0; i <= 5; i++ {
		neNew[i] = 1.5e20 // density already rescaled by a prior step
		ti[i] = 1200       // flattened temperature
	}
	relErr := RescaleEnergy(ti, neNew, g0, 5, targetEnergy)
	if relErr > DefaultTolerance {
		tst.Fatalf("energy conservation relative error %v exceeds tolerance %v", relErr, DefaultTolerance)
	}
}

func TestCheckToleranceRejectsLargeError(tst *testing.T) {
	if err := CheckTolerance("ne", 0.01); err == nil {
		tst.Fatalf("expected an error for 1%% drift exceeding the 0.1%% tolerance")
	}
	if err := CheckTolerance("ne", 1e-5); err != nil {
		tst.Fatalf("unexpected error for a tiny drift: %v", err)
	}
}

func TestRelErrorMath(tst *testing.T) {
	if math.Abs(relError(100, 100)) > 1e-12 {
		tst.Fatalf("exact match should have zero relative error")
	}
	if relError(101, 100) < 0.009 {
		tst.Fatalf("expected ~1%% relative error")
	}
}
