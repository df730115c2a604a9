package surveillance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// trendDegree is the fixed polynomial degree for resistance trend fits. A
// quadratic captures acceleration or plateauing of resistance without the
// oscillation a higher degree would introduce on short annual series.
const trendDegree = 2

// minHistoryPoints is the smallest history that determines a quadratic.
const minHistoryPoints = 3

// Forecast fits a degree-2 least-squares polynomial to the (period, rate)
// pairs in history and extrapolates horizon future periods, starting at
// max(history period)+1 with no gaps. Predictions and interval bounds are
// clamped to [0,100].
//
// Prediction intervals come from the in-sample mean squared residual and the
// standard leverage formula for extrapolation:
//
//	var(x) = mse * (1 + 1/N + (x - mean)^2 / sum((x_i - mean)^2))
//
// History entries with an undefined (NaN) rate are dropped before fitting.
// Returns InsufficientDataError when fewer than 3 usable points remain, and
// NumericalFitError when the design matrix is singular (e.g. every usable
// point shares one period). History is never mutated.
func Forecast(history []PeriodStatistic, horizon int) ([]ForecastPoint, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("forecast horizon must be positive, got %d", horizon)
	}

	var periods, rates []float64
	maxPeriod := math.MinInt
	for _, h := range history {
		if math.IsNaN(h.ResistanceRate) {
			continue
		}
		periods = append(periods, float64(h.Period))
		rates = append(rates, h.ResistanceRate)
		if h.Period > maxPeriod {
			maxPeriod = h.Period
		}
	}

	if len(periods) < minHistoryPoints {
		return nil, &InsufficientDataError{Points: len(periods), Required: minHistoryPoints}
	}

	coeffs, err := fitPolynomial(periods, rates, trendDegree)
	if err != nil {
		return nil, &NumericalFitError{Reason: "singular or ill-conditioned design matrix", Err: err}
	}

	n := float64(len(periods))
	meanPeriod := stat.Mean(periods, nil)

	var sumSquaredDev float64
	for _, p := range periods {
		sumSquaredDev += (p - meanPeriod) * (p - meanPeriod)
	}
	if sumSquaredDev == 0 {
		return nil, &NumericalFitError{Reason: "all history periods are identical"}
	}

	var mse float64
	for i := range periods {
		residual := rates[i] - evalPolynomial(coeffs, periods[i])
		mse += residual * residual
	}
	mse /= n

	points := make([]ForecastPoint, 0, horizon)
	for step := 1; step <= horizon; step++ {
		period := maxPeriod + step
		x := float64(period)

		predicted := clampPercent(evalPolynomial(coeffs, x))

		variance := mse * (1 + 1/n + (x-meanPeriod)*(x-meanPeriod)/sumSquaredDev)
		se := math.Sqrt(variance)

		points = append(points, ForecastPoint{
			Period:              period,
			PredictedResistance: predicted,
			CILower:             clampPercent(predicted - zScore95*se),
			CIUpper:             clampPercent(predicted + zScore95*se),
			Kind:                ForecastKind,
		})
	}

	return points, nil
}

// fitPolynomial solves the least-squares polynomial of the given degree via
// QR decomposition of the Vandermonde matrix. Coefficients are returned in
// ascending-power order.
func fitPolynomial(xs, ys []float64, degree int) ([]float64, error) {
	n := len(xs)

	vandermonde := mat.NewDense(n, degree+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= degree; j++ {
			vandermonde.Set(i, j, math.Pow(xs[i], float64(j)))
		}
	}

	y := mat.NewVecDense(n, ys)

	var qr mat.QR
	qr.Factorize(vandermonde)

	solution := mat.NewVecDense(degree+1, nil)
	if err := qr.SolveVecTo(solution, false, y); err != nil {
		return nil, err
	}

	coeffs := make([]float64, degree+1)
	for i := 0; i <= degree; i++ {
		coeffs[i] = solution.AtVec(i)
	}
	return coeffs, nil
}

func evalPolynomial(coeffs []float64, x float64) float64 {
	value := 0.0
	for i, c := range coeffs {
		value += c * math.Pow(x, float64(i))
	}
	return value
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
