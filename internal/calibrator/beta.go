package calibrator

import "math"

// betaQuantile returns the alpha-quantile of Beta(a, b) via bisection on
// the regularized incomplete beta function. No library in the retrieval
// pack ships a Beta-distribution quantile (see DESIGN.md); bisection on
// a continued-fraction evaluation of I_x(a,b) is the standard approach
// (Numerical Recipes §6.4) and is plenty precise for a confidence bound.
func betaQuantile(alpha, a, b float64) float64 {
	lo, hi := 0.0, 1.0
	for iter := 0; iter < 100; iter++ {
		mid := (lo + hi) / 2
		if regularizedIncompleteBeta(mid, a, b) < alpha {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// regularizedIncompleteBeta computes I_x(a, b).
func regularizedIncompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lbetaA, signA := math.Lgamma(a)
	lbetaB, signB := math.Lgamma(b)
	lbetaAB, signAB := math.Lgamma(a + b)
	_ = signA
	_ = signB
	_ = signAB
	lbeta := lbetaAB - lbetaA - lbetaB

	front := math.Exp(lbeta + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betacf(x, a, b) / a
	}
	return 1 - front*betacf(1-x, b, a)/b
}

// betacf evaluates the continued fraction for the incomplete beta function
// using the modified Lentz algorithm.
func betacf(x, a, b float64) float64 {
	const (
		maxIter = 200
		epsilon = 3e-14
		fpmin   = 1e-300
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < fpmin {
		d = fpmin
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIter; m++ {
		fm := float64(m)
		m2 := 2 * fm

		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		h *= d * c

		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < fpmin {
			d = fpmin
		}
		c = 1 + aa/c
		if math.Abs(c) < fpmin {
			c = fpmin
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < epsilon {
			break
		}
	}
	return h
}
