package sawtooth

import (
	"math"
	"testing"

	"github.com/cpmech/tokatransport/mesh"
	"github.com/cpmech/tokatransport/profiles"
)

// targetQ is the safety-factor profile buildQ1Case constructs psi to match:
// q0=0.9 at the axis, rising to exactly 1 at rho=rhoTarget with shear
// (1-q0)*p = 0.1*3 = 0.3 > s_crit=0.2 at the crossing, per the S5 scenario
// of spec.md section 8.
func targetQ(rho, rhoTarget, q0 float64, p float64) float64 {
	if rho <= 0 {
		return q0
	}
	x := rho / rhoTarget
	return q0 + (1-q0)*math.Pow(x, p)
}

// buildQ1Case constructs a mesh and a psi profile whose implied q(rho)
// (per SafetyFactor's formula) matches targetQ by numerically integrating
// dpsi/drho = c*rho/q(rho), c = 2*pi*Btor*Rminor^2/Rmajor.
func buildQ1Case(tst *testing.T) (*mesh.Mesh, profiles.CoreProfiles) {
	m, err := mesh.New(50, mesh.Circular, 6.2, 2.0, 5.3)
	if err != nil {
		tst.Fatal(err)
	}
	n := m.N
	const rhoTarget = 0.3
	const q0 = 0.9
	const p = 3.0
	c := 2 * math.Pi * m.Btor * m.Rminor * m.Rminor / m.Rmajor

	psi := make([]float64, n)
	psi[0] = 0
	for i := 1; i < n; i++ {
		rhoPrev, rhoCur := m.Rho[i-1], m.Rho[i]
		qPrev := targetQ(rhoPrev, rhoTarget, q0, p)
		qCur := targetQ(rhoCur, rhoTarget, q0, p)
		gradPrev := c * rhoPrev / qPrev
		gradCur := c * rhoCur / qCur
		psi[i] = psi[i-1] + 0.5*(gradPrev+gradCur)*(rhoCur-rhoPrev)
	}

	ti := profiles.NewField(n, 0, profiles.NeumannBC(0), profiles.DirichletBC(100))
	te := profiles.NewField(n, 0, profiles.NeumannBC(0), profiles.DirichletBC(100))
	ne := profiles.NewField(n, 0, profiles.NeumannBC(0), profiles.DirichletBC(1e20))
	for i := 0; i < n; i++ {
		frac := 1 - m.Rho[i]
		ti.Values[i] = float32(100 + 4900*frac*frac)
		te.Values[i] = ti.Values[i]
		ne.Values[i] = 1e20
	}
	psiField := profiles.NewField(n, 0, profiles.NeumannBC(0), profiles.DirichletBC(float32(psi[n-1])))
	for i := range psi {
		psiField.Values[i] = float32(psi[i])
	}

	return m, profiles.CoreProfiles{Ti: ti, Te: te, Ne: ne, Psi: psiField}
}

func TestEvaluateTriggersOnSteepQ1Crossing(tst *testing.T) {
	m, prof := buildQ1Case(tst)
	trig := Evaluate(Params{}, m, prof.Psi.Values, 1.0)
	if !trig.Fired {
		tst.Fatalf("expected sawtooth trigger to fire")
	}
	if trig.RhoQ1 <= 0.2 {
		tst.Fatalf("expected rho_q1 > rho_min=0.2, got %v", trig.RhoQ1)
	}
}

func TestEvaluateRespectsMinimumGap(tst *testing.T) {
	m, prof := buildQ1Case(tst)
	trig := Evaluate(Params{}, m, prof.Psi.Values, 0.001)
	if trig.Fired {
		tst.Fatalf("expected no trigger when elapsed time < dt_min_gap")
	}
}

func TestCrashPreservesParticleAndEnergy(tst *testing.T) {
	m, prof := buildQ1Case(tst)
	trig := Evaluate(Params{}, m, prof.Psi.Values, 1.0)
	if !trig.Fired {
		tst.Fatalf("setup error: expected trigger to fire")
	}

	next, res := Crash(Params{}, m, prof, trig)

	if res.NeRelErr > 1e-3 {
		tst.Fatalf("density conservation relative error %v exceeds 1e-3", res.NeRelErr)
	}
	if res.TiEnergyErr > 1e-3 {
		tst.Fatalf("Ti energy conservation relative error %v exceeds 1e-3", res.TiEnergyErr)
	}
	if res.TeEnergyErr > 1e-3 {
		tst.Fatalf("Te energy conservation relative error %v exceeds 1e-3", res.TeEnergyErr)
	}

	// Flattening keeps the original values at i_q1 and i_mix; the energy
	// rescale then multiplies all of [0, i_mix] by one factor, which the
	// i_mix cell exposes.
	factor := next.Ti.Values[res.IMix] / prof.Ti.Values[res.IMix]
	want := prof.Ti.Values[res.IQ1] * factor
	if math.Abs(float64(next.Ti.Values[res.IQ1]-want)) > 1e-5*math.Abs(float64(want)) {
		tst.Fatalf("continuity at i_q1 violated: got %v, want %v (original edge value times conservation factor %v)",
			next.Ti.Values[res.IQ1], want, factor)
	}

	for i := res.IMix + 1; i < m.N; i++ {
		if next.Ti.Values[i] != prof.Ti.Values[i] {
			tst.Fatalf("outer region must be untouched at cell %d", i)
		}
	}
}

func TestCrashRestoresQAxisAboveOne(tst *testing.T) {
	m, prof := buildQ1Case(tst)
	trig := Evaluate(Params{}, m, prof.Psi.Values, 1.0)
	if !trig.Fired {
		tst.Fatalf("setup error: expected trigger to fire")
	}
	next, _ := Crash(Params{}, m, prof, trig)

	q := SafetyFactor(m, next.Psi.Values)
	if q[0] <= 1 {
		tst.Fatalf("expected q(0) > 1 after crash, got %v", q[0])
	}

	retrig := Evaluate(Params{}, m, next.Psi.Values, 1.0)
	if retrig.Fired {
		tst.Fatalf("expected no immediate re-trigger after psi relaxation")
	}
}
