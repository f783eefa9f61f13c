package main

import (
	"fmt"
	"strconv"
)

func parseSetID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid set id %q: %w", s, err)
	}
	return id, nil
}
