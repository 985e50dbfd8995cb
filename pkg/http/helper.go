package http

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "onehotel/pkg/errors"
	"onehotel/pkg/model"
)

// ExtractDateRange reads the start_date/end_date query pair. Both or neither
// must be given; nil means no filter.
func ExtractDateRange(r *http.Request) (*model.DateRange, error) {
	query := r.URL.Query()
	startStr := query.Get("start_date")
	endStr := query.Get("end_date")

	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, apperrors.InvalidInput("start_date and end_date must be supplied together")
	}

	start, err := model.ParseDate(startStr)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid start_date parameter: " + startStr)
	}
	end, err := model.ParseDate(endStr)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid end_date parameter: " + endStr)
	}

	return &model.DateRange{Start: start.Time, End: end.Time}, nil
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields and
// trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperrors.New(apperrors.CodeBadRequest, "Request body too large", http.StatusRequestEntityTooLarge)
		}
		return apperrors.InvalidInput("Invalid request body: " + err.Error())
	}
	if decoder.More() {
		return apperrors.InvalidInput("Invalid request body: unexpected trailing data")
	}
	return nil
}
