package pricing

import (
	"math"
	"testing"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestFare(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		class    models.VehicleClass
		expected float64
		wantErr  error
	}{
		{name: "economy partial km rounds up", distance: 3.4, class: models.ClassEconomy, expected: 3.00},
		{name: "comfort partial km rounds up", distance: 2.1, class: models.ClassComfort, expected: 4.5},
		{name: "business whole km", distance: 10, class: models.ClassBusiness, expected: 20},
		{name: "zero distance is free", distance: 0, class: models.ClassBusiness, expected: 0},
		{name: "tiny distance bills one km", distance: 0.01, class: models.ClassEconomy, expected: 0.75},
		{name: "negative distance", distance: -1, class: models.ClassEconomy, wantErr: errs.ErrValidation},
		{name: "NaN distance", distance: math.NaN(), class: models.ClassEconomy, wantErr: errs.ErrValidation},
		{name: "unknown class", distance: 5, class: "limo", wantErr: errs.ErrValidation},
		{name: "longest ride", distance: models.MaxDistanceKm, class: models.ClassEconomy, expected: 15000},
		{name: "too long", distance: models.MaxDistanceKm + 0.5, class: models.ClassEconomy, wantErr: errs.ErrValidation},
		{name: "infinite distance", distance: math.Inf(1), class: models.ClassEconomy, wantErr: errs.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fare(tt.distance, tt.class)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFare_MatchesFormulaForAllClasses(t *testing.T) {
	for class, rate := range PerKmRates {
		for _, d := range []float64{0, 0.5, 1, 1.0001, 7.99, 42} {
			got, err := Fare(d, class)
			assert.NoError(t, err)
			assert.Equal(t, math.Ceil(d)*rate, got, "class=%s distance=%v", class, d)
		}
	}
}

func TestRate(t *testing.T) {
	r, err := Rate(models.ClassComfort)
	assert.NoError(t, err)
	assert.Equal(t, 1.5, r)

	_, err = Rate("")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestClasses_AllPriced(t *testing.T) {
	classes := Classes()
	assert.Len(t, classes, len(PerKmRates))

	prev := 0.0
	for _, c := range classes {
		r, err := Rate(c)
		assert.NoError(t, err)
		assert.Greater(t, r, prev, "classes are ordered by rate")
		prev = r
	}
}
