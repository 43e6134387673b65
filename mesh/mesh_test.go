package mesh

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestNewMeshShapes(tst *testing.T) {
	chk.PrintTitle("mesh: face/cell array shapes")
	m, err := New(25, Circular, 6.2, 2.0, 5.3)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	if len(m.Rho) != 25 {
		tst.Fatalf("expected 25 cells, got %d", len(m.Rho))
	}
	if len(m.RhoFace) != 26 {
		tst.Fatalf("expected 26 faces, got %d", len(m.RhoFace))
	}
	if len(m.FaceDist) != 26 || len(m.G0) != 26 || len(m.G1) != 26 {
		tst.Fatalf("face arrays must all have length N+1")
	}
	if len(m.V) != 25 {
		tst.Fatalf("cell arrays must have length N")
	}
}

func TestMeshDegenerate(tst *testing.T) {
	if _, err := New(2, Circular, 6.2, 2.0, 5.3); err == nil {
		tst.Fatalf("expected MeshDegenerate error for n=2")
	}
	if _, err := New(10, Circular, -1, 2.0, 5.3); err == nil {
		tst.Fatalf("expected error for negative rmajor")
	}
	if _, err := New(10, Circular, 6.2, 2.0, 0); err == nil {
		tst.Fatalf("expected error for zero btor")
	}
}

func TestMeshMonotonicRho(tst *testing.T) {
	m, err := New(50, Circular, 6.2, 2.0, 5.3)
	if err != nil {
		tst.Fatal(err)
	}
	for i := 1; i < len(m.Rho); i++ {
		if m.Rho[i] <= m.Rho[i-1] {
			tst.Fatalf("rho must be strictly increasing at i=%d", i)
		}
	}
	if m.RhoFace[0] != 0 {
		tst.Fatalf("first face must be at rho=0")
	}
	if m.RhoFace[m.N] != 1 {
		tst.Fatalf("last face must be at rho=1, got %v", m.RhoFace[m.N])
	}
}
