package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ExpandRanges turns run or set selections such as "1-4" or "1,3" into a
// flat list of positive numbers, keeping input order and dropping duplicates.
//
// Examples:
//   - ["1-3"] → [1 2 3]
//   - ["1", "3-4"] → [1 3 4]
//   - ["2,1-2"] → [2 1]
func ExpandRanges(input []string) ([]int, error) {
	var result []int
	seen := make(map[int]bool)

	for _, item := range input {
		// cobra's IntSlice/StringSlice already splits on commas; this covers
		// values that arrive through viper or the settings file.
		for _, segment := range strings.Split(item, ",") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}

			expanded, err := expandSegment(segment)
			if err != nil {
				return nil, err
			}
			for _, n := range expanded {
				if !seen[n] {
					seen[n] = true
					result = append(result, n)
				}
			}
		}
	}

	return result, nil
}

// expandSegment handles a single segment which may be a number ("5") or a range ("1-5")
func expandSegment(segment string) ([]int, error) {
	if idx := strings.Index(segment, "-"); idx > 0 && idx < len(segment)-1 {
		startStr := strings.TrimSpace(segment[:idx])
		endStr := strings.TrimSpace(segment[idx+1:])

		start, err := parsePositive(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", segment, err)
		}
		end, err := parsePositive(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", segment, err)
		}
		if start > end {
			return nil, fmt.Errorf("invalid range %q: start (%d) is greater than end (%d)", segment, start, end)
		}

		result := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			result = append(result, i)
		}
		return result, nil
	}

	n, err := parsePositive(segment)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", segment, err)
	}
	return []int{n}, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d must be at least 1", n)
	}
	return n, nil
}
