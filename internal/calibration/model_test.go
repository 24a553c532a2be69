package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLinear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		xs            [][]float64
		y             []float64
		wantIntercept float64
		wantCoef      []float64
	}{
		{
			name:          "single feature line",
			xs:            [][]float64{{1}, {2}, {3}, {4}},
			y:             []float64{5, 8, 11, 14},
			wantIntercept: 2,
			wantCoef:      []float64{3},
		},
		{
			name:          "two independent features",
			xs:            [][]float64{{0, 0}, {1, 0}, {0, 1}, {2, 3}},
			y:             []float64{1, 3, 0, 2},
			wantIntercept: 1,
			wantCoef:      []float64{2, -1},
		},
		{
			name:          "duplicated column takes the minimum-norm split",
			xs:            [][]float64{{1, 1}, {2, 2}, {3, 3}},
			y:             []float64{5, 8, 11},
			wantIntercept: 2,
			wantCoef:      []float64{1.5, 1.5},
		},
		{
			name:          "all-zero features fit the mean",
			xs:            [][]float64{{0}, {0}},
			y:             []float64{1, 3},
			wantIntercept: 2,
			wantCoef:      []float64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := FitLinear(tt.xs, tt.y)
			assert.InDelta(t, tt.wantIntercept, m.Intercept, 1e-9)
			require.Len(t, m.Coef, len(tt.wantCoef))
			for i := range tt.wantCoef {
				assert.InDelta(t, tt.wantCoef[i], m.Coef[i], 1e-9, "coef %d", i)
			}
			pred := PredictLinear(m, tt.xs)
			assert.InDeltaSlice(t, PredictLinear(LinearModel{Intercept: tt.wantIntercept, Coef: tt.wantCoef}, tt.xs), pred, 1e-9)
		})
	}
}

func TestFitLinear_Empty(t *testing.T) {
	t.Parallel()
	m := FitLinear(nil, nil)
	assert.Zero(t, m.Intercept)
	assert.NotNil(t, m.Coef)
	assert.Empty(t, m.Coef)
	assert.Empty(t, PredictLinear(m, nil))
}

func TestPredictLinear_ShortCoefficients(t *testing.T) {
	t.Parallel()
	m := LinearModel{Intercept: 1, Coef: []float64{2, 5}}
	assert.Equal(t, []float64{3, 13}, PredictLinear(m, [][]float64{{1}, {1, 2}}))
}

func TestFitQuadratic(t *testing.T) {
	t.Parallel()

	xs := [][]float64{{0, 9}, {1, 9}, {2, 9}, {3, 9}, {4, 9}}
	y := make([]float64, len(xs))
	for i, row := range xs {
		x := row[0]
		y[i] = 1 - 2*x + 0.5*x*x
	}

	m := FitQuadratic(xs, y)
	assert.InDelta(t, 1, m.A0, 1e-9)
	assert.InDelta(t, -2, m.A1, 1e-9)
	assert.InDelta(t, 0.5, m.A2, 1e-9)
	assert.InDeltaSlice(t, y, PredictQuadratic(m, xs), 1e-9)
}

func TestFitQuadratic_Underdetermined(t *testing.T) {
	t.Parallel()

	xs := [][]float64{{1}, {2}}
	y := []float64{3, 7}
	m := FitQuadratic(xs, y)
	assert.InDeltaSlice(t, y, PredictQuadratic(m, xs), 1e-9)

	assert.Equal(t, QuadraticModel{}, FitQuadratic(nil, nil))
	assert.Equal(t, []float64{4}, PredictQuadratic(QuadraticModel{A0: 4, A1: 1}, [][]float64{{}}))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	m := Evaluate([]float64{1, 2, 3}, []float64{1, 2, 4})
	assert.InDelta(t, math.Sqrt(1.0/3), m.RMSE, 1e-12)
	assert.InDelta(t, 1.0/3, m.MAE, 1e-12)
	assert.InDelta(t, 0.5, m.R2, 1e-12)

	constant := Evaluate([]float64{2, 2, 2}, []float64{1, 2, 3})
	assert.Zero(t, constant.R2)
	assert.InDelta(t, math.Sqrt(2.0/3), constant.RMSE, 1e-12)

	assert.Equal(t, Metrics{}, Evaluate(nil, nil))

	perfect := Evaluate([]float64{1, 5}, []float64{1, 5})
	assert.Zero(t, perfect.RMSE)
	assert.InDelta(t, 1, perfect.R2, 1e-12)
}

func TestRecommendModel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ModelLinear, RecommendModel(Metrics{RMSE: 1}, Metrics{RMSE: 1}))
	assert.Equal(t, ModelLinear, RecommendModel(Metrics{RMSE: 1}, Metrics{RMSE: 2}))
	assert.Equal(t, ModelQuadratic, RecommendModel(Metrics{RMSE: 1}, Metrics{RMSE: 0.5}))
}

func TestResidualStd(t *testing.T) {
	t.Parallel()
	assert.Zero(t, residualStd([]float64{3}, []float64{10}))
	assert.InDelta(t, 1, residualStd([]float64{0, 0}, []float64{1, -1}), 1e-12)
	assert.Zero(t, residualStd([]float64{1, 2}, []float64{2, 3}), "constant offset has no spread")
}

func TestSafeDiv(t *testing.T) {
	t.Parallel()
	assert.InDelta(t, 2.5, safeDiv(5, 2), 1e-12)
	assert.Zero(t, safeDiv(5, 0))
	assert.Zero(t, safeDiv(5, -1))
}
