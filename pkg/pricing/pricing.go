// Package pricing computes order fares.
//
// The fare is the distance rounded up to the next whole kilometre times a
// per-class rate. Partial kilometres are billed in full.
package pricing

import (
	"fmt"
	"math"

	"taxiorders/pkg/errs"
	"taxiorders/pkg/models"
)

var PerKmRates = map[models.VehicleClass]float64{
	models.ClassEconomy:  0.75,
	models.ClassComfort:  1.5,
	models.ClassBusiness: 2.0,
}

func Rate(class models.VehicleClass) (float64, error) {
	rate, ok := PerKmRates[class]
	if !ok {
		return 0, errs.NewValidationErrorWithCause("vehicle_class", fmt.Errorf("no rate for %q", class))
	}
	return rate, nil
}

func Fare(distanceKm float64, class models.VehicleClass) (float64, error) {
	if !models.ValidDistanceKm(distanceKm) {
		return 0, errs.NewValidationErrorWithCause("distance_km", fmt.Errorf("%v is outside [0, %d] km", distanceKm, models.MaxDistanceKm))
	}

	rate, err := Rate(class)
	if err != nil {
		return 0, err
	}

	return math.Ceil(distanceKm) * rate, nil
}

// Classes lists vehicle classes cheapest first.
func Classes() []models.VehicleClass {
	return []models.VehicleClass{models.ClassEconomy, models.ClassComfort, models.ClassBusiness}
}
