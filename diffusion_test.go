/*
Copyright © 2018 the Column authors.
This file is part of Column.

Column is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Column is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Column.  If not, see <http://www.gnu.org/licenses/>.
*/

package column

import (
	"math"
	"testing"
)

func uniformGrid(n int, thickness float64) []float64 {
	h := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		h[i] = thickness
	}
	return h
}

func constantProfile(n int, val float64) []float64 {
	y := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		y[i] = val
	}
	return y
}

// Diffusion with zero boundary fluxes must conserve the depth integral and
// smooth the profile toward its mean.
func TestDiffuseCenterConservation(t *testing.T) {
	const (
		testTolerance = 1.e-12
		n             = 10
		dt            = 100.
		cnpar         = 0.6
	)
	h := uniformGrid(n, 1.)
	nu := constantProfile(n, 0.01)
	y := make([]float64, n+1)
	for k := 1; k <= n; k++ {
		y[k] = float64(k%3) + 0.5
	}
	total := depthIntegral(h, y)
	for step := 0; step < 200; step++ {
		if err := DiffuseCenter(n, dt, cnpar, false, h,
			Neumann, Neumann, 0, 0, nu, nil, nil, nil, nil, y); err != nil {
			t.Fatal(err)
		}
		if different(depthIntegral(h, y), total, testTolerance) {
			t.Fatalf("step %d: integral %g != %g", step, depthIntegral(h, y), total)
		}
	}
	// After many diffusive timescales the profile is well mixed.
	mean := total / 10.
	for k := 1; k <= n; k++ {
		if different(y[k], mean, 1.e-6) {
			t.Errorf("layer %d: %g != %g", k, y[k], mean)
		}
	}
}

// A constant Neumann surface flux adds mass at exactly the prescribed rate.
func TestDiffuseCenterNeumannFlux(t *testing.T) {
	const (
		testTolerance = 1.e-10
		n             = 8
		dt            = 10.
		flux          = 0.25
		steps         = 50
	)
	h := uniformGrid(n, 0.5)
	nu := constantProfile(n, 0.1)
	y := constantProfile(n, 1.)
	total := depthIntegral(h, y)
	for step := 0; step < steps; step++ {
		if err := DiffuseCenter(n, dt, 1., false, h,
			Neumann, Neumann, flux, 0, nu, nil, nil, nil, nil, y); err != nil {
			t.Fatal(err)
		}
	}
	want := total + steps*dt*flux
	if different(depthIntegral(h, y), want, testTolerance) {
		t.Errorf("integral %g != %g", depthIntegral(h, y), want)
	}
}

// With both boundary layers pinned, the profile must relax to the linear
// steady state.
func TestDiffuseCenterDirichlet(t *testing.T) {
	const (
		testTolerance = 1.e-8
		n             = 10
		valUp         = 1.
		valDown       = 0.
	)
	h := uniformGrid(n, 1.)
	nu := constantProfile(n, 1.)
	y := constantProfile(n, 0.5)
	for step := 0; step < 5000; step++ {
		if err := DiffuseCenter(n, 1., 1., false, h,
			Dirichlet, Dirichlet, valUp, valDown, nu, nil, nil, nil, nil, y); err != nil {
			t.Fatal(err)
		}
	}
	for k := 1; k <= n; k++ {
		want := valDown + (valUp-valDown)*float64(k-1)/float64(n-1)
		if math.Abs(y[k]-want) > testTolerance {
			t.Errorf("layer %d: %g != %g", k, y[k], want)
		}
	}
}

// Relaxation toward an observed profile with no diffusion follows the
// implicit nudging update exactly.
func TestDiffuseCenterRelaxation(t *testing.T) {
	const (
		testTolerance = 1.e-12
		n             = 4
		dt            = 30.
		tau           = 300.
	)
	h := uniformGrid(n, 1.)
	nu := constantProfile(n, 0.)
	relaxTau := constantProfile(n, tau)
	yObs := constantProfile(n, 20.)
	y := constantProfile(n, 10.)
	if err := DiffuseCenter(n, dt, 1., false, h,
		Neumann, Neumann, 0, 0, nu, nil, nil, relaxTau, yObs, y); err != nil {
		t.Fatal(err)
	}
	want := (10. + dt/tau*20.) / (1. + dt/tau)
	for k := 1; k <= n; k++ {
		if different(y[k], want, testTolerance) {
			t.Errorf("layer %d: %g != %g", k, y[k], want)
		}
	}
}

// In positivity-preserving mode a negative constant source cannot drive the
// profile negative, however large the sink.
func TestDiffuseCenterPositiveDefinite(t *testing.T) {
	const (
		n  = 4
		dt = 1.
	)
	h := uniformGrid(n, 1.)
	nu := constantProfile(n, 0.)
	qsour := constantProfile(n, -1.)
	y := constantProfile(n, 0.1)
	if err := DiffuseCenter(n, dt, 1., true, h,
		Neumann, Neumann, 0, 0, nu, nil, qsour, nil, nil, y); err != nil {
		t.Fatal(err)
	}
	for k := 1; k <= n; k++ {
		if y[k] <= 0 {
			t.Errorf("layer %d: %g is not positive", k, y[k])
		}
	}
}

func TestDiffuseCenterInvalidBoundary(t *testing.T) {
	const n = 4
	h := uniformGrid(n, 1.)
	nu := constantProfile(n, 1.)
	y := constantProfile(n, 1.)
	err := DiffuseCenter(n, 1., 1., false, h,
		BoundaryType(7), Neumann, 0, 0, nu, nil, nil, nil, nil, y)
	if err == nil {
		t.Fatal("expected an error for an invalid boundary type")
	}
}

// Interface-located diffusion with zero boundary fluxes conserves the
// control-volume weighted integral of the profile.
func TestDiffuseFaceConservation(t *testing.T) {
	const (
		testTolerance = 1.e-12
		n             = 9
		dt            = 50.
	)
	h := uniformGrid(n, 2.)
	nu := constantProfile(n, 0.05)
	y := make([]float64, n+1)
	for i := 1; i <= n-1; i++ {
		y[i] = 1. + math.Sin(float64(i))
	}
	weighted := func() float64 {
		var sum float64
		for i := 1; i <= n-1; i++ {
			sum += 0.5 * (h[i] + h[i+1]) * y[i]
		}
		return sum
	}
	total := weighted()
	for step := 0; step < 100; step++ {
		if err := DiffuseFace(n, dt, 1., h,
			Neumann, Neumann, 0, 0, nu, nil, nil, y); err != nil {
			t.Fatal(err)
		}
		if different(weighted(), total, testTolerance) {
			t.Fatalf("step %d: integral %g != %g", step, weighted(), total)
		}
	}
}

// A two-layer column has one unknown interface; boundary fluxes act on it
// directly and Dirichlet conditions pin it.
func TestDiffuseFaceTwoLayers(t *testing.T) {
	const (
		testTolerance = 1.e-12
		dt            = 2.
		valUp         = 0.3
		valDown       = 0.1
	)
	h := uniformGrid(2, 1.5)
	nu := constantProfile(2, 0.4)
	y := constantProfile(2, 1.)
	if err := DiffuseFace(2, dt, 1., h,
		Neumann, Neumann, valUp, valDown, nu, nil, nil, y); err != nil {
		t.Fatal(err)
	}
	want := 1. + 2.*dt*(valUp+valDown)/(h[1]+h[2])
	if different(y[1], want, testTolerance) {
		t.Errorf("%g != %g", y[1], want)
	}

	y = constantProfile(2, 1.)
	if err := DiffuseFace(2, dt, 1., h,
		Dirichlet, Neumann, 7., 0, nu, nil, nil, y); err != nil {
		t.Fatal(err)
	}
	if y[1] != 7. {
		t.Errorf("%g != 7", y[1])
	}
}

func TestDiffuseFaceInvalidBoundary(t *testing.T) {
	const n = 5
	h := uniformGrid(n, 1.)
	nu := constantProfile(n, 1.)
	y := constantProfile(n, 1.)
	err := DiffuseFace(n, 1., 1., h,
		Neumann, BoundaryType(-1), 0, 0, nu, nil, nil, y)
	if err == nil {
		t.Fatal("expected an error for an invalid boundary type")
	}
}

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}
