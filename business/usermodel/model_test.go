package usermodel

import (
	"math"
	"math/rand"
	"testing"
)

const (
	testNumProducts = 10
	testLatentDim   = 5
	testSeed        = 42
)

func testParams() Params {
	return Params{
		NumProducts: testNumProducts,
		LatentDim:   testLatentDim,
		UserStddev:  1.0,
		ClickScale:  1.0,
		ClickBias:   -4.0,
	}
}

func TestNew_RejectsBadParams(t *testing.T) {
	cases := []Params{
		{NumProducts: 0, LatentDim: 5, UserStddev: 1},
		{NumProducts: 10, LatentDim: 0, UserStddev: 1},
		{NumProducts: 10, LatentDim: 5, UserStddev: 0},
	}

	for i, p := range cases {
		if _, err := New(p, testSeed); err == nil {
			t.Errorf("case %d: expected error for params %+v", i, p)
		}
	}
}

func TestNew_SameSeedSameEmbeddings(t *testing.T) {
	m1, err := New(testParams(), testSeed)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m2, err := New(testParams(), testSeed)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	u := m1.SampleUserState(rand.New(rand.NewSource(7)))

	d1 := m1.OrganicDistribution(u)
	d2 := m2.OrganicDistribution(u)

	for k := range d1 {
		if d1[k] != d2[k] {
			t.Fatalf("product %d: distributions diverge: %g vs %g", k, d1[k], d2[k])
		}
	}
}

func TestNew_DifferentSeedDifferentEmbeddings(t *testing.T) {
	m1, _ := New(testParams(), testSeed)
	m2, _ := New(testParams(), testSeed+1)

	u := m1.SampleUserState(rand.New(rand.NewSource(7)))

	d1 := m1.OrganicDistribution(u)
	d2 := m2.OrganicDistribution(u)

	same := true
	for k := range d1 {
		if d1[k] != d2[k] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical organic distributions")
	}
}

func TestOrganicDistribution_IsNormalized(t *testing.T) {
	m, err := New(testParams(), testSeed)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	rng := rand.New(rand.NewSource(123))
	for trial := 0; trial < 20; trial++ {
		u := m.SampleUserState(rng)
		dist := m.OrganicDistribution(u)

		sum := 0.0
		for k, p := range dist {
			if p < 0 || p > 1 {
				t.Fatalf("trial %d product %d: probability %g out of [0,1]", trial, k, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("trial %d: distribution sums to %g", trial, sum)
		}
	}
}

func TestClickProbability_Bounds(t *testing.T) {
	m, err := New(testParams(), testSeed)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	rng := rand.New(rand.NewSource(9))
	for trial := 0; trial < 20; trial++ {
		u := m.SampleUserState(rng)
		for k := 0; k < testNumProducts; k++ {
			p := m.ClickProbability(u, k)
			if p <= 0 || p >= 1 {
				t.Fatalf("trial %d product %d: click probability %g out of (0,1)", trial, k, p)
			}
		}
	}
}

func TestSampleClick_BinaryAndConsistent(t *testing.T) {
	m, err := New(testParams(), testSeed)
	if err != nil {
		t.Fatalf("new model: %v", err)
	}

	rng := rand.New(rand.NewSource(55))
	u := m.SampleUserState(rng)

	clicks := 0.0
	const draws = 5000
	for i := 0; i < draws; i++ {
		r := m.SampleClick(u, 0, rng)
		if r != 0 && r != 1 {
			t.Fatalf("click reward %g is not binary", r)
		}
		clicks += r
	}

	rate := clicks / draws
	want := m.ClickProbability(u, 0)
	if math.Abs(rate-want) > 0.05 {
		t.Fatalf("empirical click rate %g too far from model probability %g", rate, want)
	}
	t.Logf("empirical=%g model=%g", rate, want)
}

func TestDeriveSeed_LabelsSeparateStreams(t *testing.T) {
	a := DeriveSeed(testSeed, "episode-0")
	b := DeriveSeed(testSeed, "episode-1")
	c := DeriveSeed(testSeed, "logging-policy")

	if a == b || a == c || b == c {
		t.Fatalf("derived seeds collide: %d %d %d", a, b, c)
	}

	if a != DeriveSeed(testSeed, "episode-0") {
		t.Fatal("DeriveSeed is not deterministic")
	}
}

func TestSamplePoisson_MeanSanity(t *testing.T) {
	rng := rand.New(rand.NewSource(321))

	const mean = 3.0
	const draws = 20000

	sum := 0
	for i := 0; i < draws; i++ {
		n := SamplePoisson(rng, mean)
		if n < 0 {
			t.Fatalf("negative draw %d", n)
		}
		sum += n
	}

	got := float64(sum) / draws
	if math.Abs(got-mean) > 0.1 {
		t.Fatalf("empirical mean %g too far from %g", got, mean)
	}
	t.Logf("empirical mean=%g", got)
}

func TestSamplePoisson_NonPositiveMean(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if n := SamplePoisson(rng, 0); n != 0 {
		t.Fatalf("mean 0 produced %d", n)
	}
	if n := SamplePoisson(rng, -1); n != 0 {
		t.Fatalf("negative mean produced %d", n)
	}
}
