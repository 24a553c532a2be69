package calibration

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// lstsq solves min ||a·x - b|| and returns the minimum-norm solution when a
// is rank deficient. Singular values below eps·max(m,n)·s_max are dropped.
func lstsq(rows, cols int, data, b []float64) []float64 {
	x := make([]float64, cols)
	if rows == 0 || cols == 0 {
		return x
	}

	a := mat.NewDense(rows, cols, data)
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return x
	}
	rcond := epsilon * float64(max(rows, cols))
	rank := svd.Rank(rcond)
	if rank == 0 {
		return x
	}

	var sol mat.VecDense
	svd.SolveVecTo(&sol, mat.NewVecDense(rows, b), rank)
	for i := range cols {
		x[i] = sol.AtVec(i)
	}
	return x
}

// epsilon is float64 machine epsilon, the default relative rank cutoff.
const epsilon = 2.220446049250313e-16

// FitLinear fits density = intercept + coef·x over all columns of xs.
// Every row of xs must have the same length.
func FitLinear(xs [][]float64, y []float64) LinearModel {
	if len(xs) == 0 {
		return LinearModel{Coef: []float64{}}
	}
	nFeatures := len(xs[0])
	cols := nFeatures + 1
	data := make([]float64, 0, len(xs)*cols)
	for _, row := range xs {
		data = append(data, 1)
		data = append(data, row...)
	}
	beta := lstsq(len(xs), cols, data, y)
	return LinearModel{Intercept: beta[0], Coef: beta[1:]}
}

// PredictLinear evaluates m on each row of xs. Missing coefficients count as 0.
func PredictLinear(m LinearModel, xs [][]float64) []float64 {
	out := make([]float64, len(xs))
	for i, row := range xs {
		v := m.Intercept
		for j, c := range m.Coef {
			if j < len(row) {
				v += c * row[j]
			}
		}
		out[i] = v
	}
	return out
}

// FitQuadratic fits density = a0 + a1·x + a2·x² on the first column of xs.
func FitQuadratic(xs [][]float64, y []float64) QuadraticModel {
	if len(xs) == 0 {
		return QuadraticModel{}
	}
	data := make([]float64, 0, len(xs)*3)
	for _, row := range xs {
		x := firstColumn(row)
		data = append(data, 1, x, x*x)
	}
	beta := lstsq(len(xs), 3, data, y)
	return QuadraticModel{A0: beta[0], A1: beta[1], A2: beta[2]}
}

// PredictQuadratic evaluates m on the first column of each row of xs.
func PredictQuadratic(m QuadraticModel, xs [][]float64) []float64 {
	out := make([]float64, len(xs))
	for i, row := range xs {
		x := firstColumn(row)
		out[i] = m.A0 + m.A1*x + m.A2*x*x
	}
	return out
}

func firstColumn(row []float64) float64 {
	if len(row) == 0 {
		return 0
	}
	return row[0]
}

// Evaluate computes RMSE, MAE and R² of predicted against actual.
// All three are 0 for empty input; R² is 0 when actual has no variance.
func Evaluate(actual, predicted []float64) Metrics {
	n := len(actual)
	if n == 0 {
		return Metrics{}
	}

	var sse, sae float64
	for i := range n {
		e := predicted[i] - actual[i]
		sse += e * e
		sae += math.Abs(e)
	}

	mean := stat.Mean(actual, nil)
	var sst float64
	for _, v := range actual {
		d := v - mean
		sst += d * d
	}

	m := Metrics{
		RMSE: math.Sqrt(sse / float64(n)),
		MAE:  sae / float64(n),
	}
	if sst > 0 {
		m.R2 = 1 - sse/sst
	}
	return m
}

// RecommendModel picks quadratic only when its RMSE is strictly lower.
func RecommendModel(linear, quadratic Metrics) string {
	if quadratic.RMSE < linear.RMSE {
		return ModelQuadratic
	}
	return ModelLinear
}

// residualStd is the population std-dev of predicted-actual, 0 for fewer
// than two residuals.
func residualStd(actual, predicted []float64) float64 {
	if len(actual) < 2 {
		return 0
	}
	residuals := make([]float64, len(actual))
	for i := range actual {
		residuals[i] = predicted[i] - actual[i]
	}
	return stat.PopStdDev(residuals, nil)
}

// safeDiv returns num/den, or 0 when den is not positive.
func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
