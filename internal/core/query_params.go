// internal/core/query_params.go
package core

import (
	"fmt"
	"net/url"
	"strconv"
)

// Default and limit constants for run history listing
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// RunListOptions holds parsed query parameters for the run history listing
type RunListOptions struct {
	Limit int
}

// ParseRunListOptions extracts the 'limit' query parameter.
// Returns the parsed options and any validation error.
func ParseRunListOptions(queryParams url.Values) (*RunListOptions, error) {
	opts := &RunListOptions{Limit: DefaultLimit}

	if limitStr := queryParams.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be an integer")
		}
		if limit < 1 {
			return nil, fmt.Errorf("invalid 'limit' parameter: must be at least 1")
		}
		if limit > MaxLimit {
			return nil, fmt.Errorf("invalid 'limit' parameter: maximum is %d", MaxLimit)
		}
		opts.Limit = limit
	}

	return opts, nil
}
