// Package datagen supplies the index -> parameters generator functions that
// population.New and projection.New are built to accept (§6), plus a small
// catalog of synthetic digit spike patterns for feeding an input channel
// without external test data.
package datagen

import "fmt"

// PatternHeight and PatternWidth are the fixed dimensions of every digit
// pattern in the catalog; PatternSize is their product.
const (
	PatternHeight = 7
	PatternWidth  = 5
	PatternSize   = PatternHeight * PatternWidth
)

// digitPatterns stores the raw 2D patterns for digits 0-9: 1 marks an
// active pixel, 0 an inactive one.
var digitPatterns = map[int][][]int{
	0: {
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 1, 1, 1, 1},
	},
	1: {
		{0, 0, 1, 0, 0},
		{0, 1, 1, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 1, 1, 1, 0},
	},
	2: {
		{1, 1, 1, 1, 0},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 1},
		{0, 1, 1, 1, 0},
		{1, 0, 0, 0, 0},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
	},
	3: {
		{1, 1, 1, 1, 0},
		{0, 0, 0, 0, 1},
		{0, 0, 1, 1, 0},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 1},
		{1, 1, 1, 1, 0},
	},
	4: {
		{1, 0, 0, 1, 0},
		{1, 0, 0, 1, 0},
		{1, 0, 0, 1, 0},
		{1, 1, 1, 1, 1},
		{0, 0, 0, 1, 0},
		{0, 0, 0, 1, 0},
		{0, 0, 0, 1, 0},
	},
	5: {
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 0},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 1},
		{1, 1, 1, 1, 0},
	},
	6: {
		{0, 1, 1, 1, 0},
		{1, 0, 0, 0, 0},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 0},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{0, 1, 1, 1, 0},
	},
	7: {
		{1, 1, 1, 1, 1},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 1, 0},
		{0, 0, 1, 0, 0},
		{0, 1, 0, 0, 0},
		{0, 1, 0, 0, 0},
		{0, 1, 0, 0, 0},
	},
	8: {
		{0, 1, 1, 1, 0},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{0, 1, 1, 1, 0},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{0, 1, 1, 1, 0},
	},
	9: {
		{0, 1, 1, 1, 0},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{0, 1, 1, 1, 1},
		{0, 0, 0, 0, 1},
		{0, 0, 0, 0, 1},
		{0, 1, 1, 1, 0},
	},
}

// DigitPattern returns digit's flattened pattern as PatternSize float64
// values (1.0 active, 0.0 inactive), row-major.
func DigitPattern(digit int) ([]float64, error) {
	rows, ok := digitPatterns[digit]
	if !ok {
		return nil, fmt.Errorf("datagen: no pattern for digit %d", digit)
	}
	flat := make([]float64, 0, PatternSize)
	for _, row := range rows {
		for _, v := range row {
			if v != 0 {
				flat = append(flat, 1.0)
			} else {
				flat = append(flat, 0.0)
			}
		}
	}
	return flat, nil
}

// DigitSpikeIndices returns the flattened pixel indices that are active in
// digit's pattern, ready to populate a messaging.SpikeData for an input
// channel.
func DigitSpikeIndices(digit int) ([]uint32, error) {
	pattern, err := DigitPattern(digit)
	if err != nil {
		return nil, err
	}
	var indices []uint32
	for i, v := range pattern {
		if v != 0 {
			indices = append(indices, uint32(i))
		}
	}
	return indices, nil
}

// AllDigitPatterns returns every digit's flattened pattern, keyed by digit.
func AllDigitPatterns() (map[int][]float64, error) {
	out := make(map[int][]float64, len(digitPatterns))
	for digit := range digitPatterns {
		pattern, err := DigitPattern(digit)
		if err != nil {
			return nil, err
		}
		out[digit] = pattern
	}
	return out, nil
}
