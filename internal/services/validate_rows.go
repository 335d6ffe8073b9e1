package services

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"

	"recycling-route-service/internal/domain"
)

// collectionRow is the validated view of a CollectionRequest.
// Field names double as the reported field in InputDataError.
type collectionRow struct {
	Day       string  `validate:"required"`
	Latitude  float64 `validate:"finite,latitude"`
	Longitude float64 `validate:"finite,longitude"`
	WeightKg  float64 `validate:"finite,gte=0"`
}

var (
	validateOnce sync.Once
	rowValidator *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// NaN and infinities stand in for missing or unparseable numeric fields.
		_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field()
			if f.Kind() != reflect.Float32 && f.Kind() != reflect.Float64 {
				return true
			}
			return !math.IsNaN(f.Float()) && !math.IsInf(f.Float(), 0)
		})
		rowValidator = v
	})
	return rowValidator
}

// validateRow reports the first problem that makes a collection row unroutable.
func validateRow(r domain.CollectionRequest) *domain.InputDataError {
	err := getValidator().Struct(collectionRow{
		Day:       r.Day,
		Latitude:  r.Lat,
		Longitude: r.Lon,
		WeightKg:  r.WeightKg,
	})
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return &domain.InputDataError{Row: r.Row, Day: r.Day, Location: r.Location, Field: "row", Reason: err.Error()}
	}

	fe := fieldErrs[0]
	return &domain.InputDataError{
		Row:      r.Row,
		Day:      r.Day,
		Location: r.Location,
		Field:    fe.Field(),
		Reason:   describeFieldError(fe),
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing value"
	case "finite":
		return "missing or not a number"
	case "latitude":
		return fmt.Sprintf("%v is outside [-90, 90]", fe.Value())
	case "longitude":
		return fmt.Sprintf("%v is outside [-180, 180]", fe.Value())
	case "gte":
		return fmt.Sprintf("%v must be >= %s", fe.Value(), fe.Param())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
