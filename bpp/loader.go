package bpp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
)

// LoadInstance reads an instance file: the item count, the bin capacity and
// then one integer weight per item, separated by any whitespace. Lines
// starting with '#' are skipped.
func LoadInstance(path string) (*Instance, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	defer file.Close()
	inst, err := ParseInstance(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	inst.Name = filepath.Base(path)
	return inst, nil
}

func ParseInstance(r io.Reader) (*Instance, error) {
	tokens, err := readTokens(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	if len(tokens) < 2 {
		return nil, fmt.Errorf("%w: expected item count and bin capacity", ErrInput)
	}
	count, err := strconv.Atoi(string(tokens[0]))
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: bad item count %q", ErrInput, tokens[0])
	}
	capacity, err := strconv.ParseFloat(string(tokens[1]), 64)
	if err != nil || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return nil, fmt.Errorf("%w: bad bin capacity %q", ErrInput, tokens[1])
	}
	if capacity < 0 || capacity > MaxCapacity {
		return nil, fmt.Errorf("%w: bin capacity %s outside [0, %d]", ErrInput, tokens[1], MaxCapacity)
	}
	weights := tokens[2:]
	if len(weights) < count {
		return nil, fmt.Errorf("%w: expected %d weights, found %d", ErrInput, count, len(weights))
	}
	if len(weights) > count {
		return nil, fmt.Errorf("%w: %d trailing values after %d weights", ErrInput, len(weights)-count, count)
	}
	parsed := make([]int, count)
	for i, token := range weights {
		w, err := strconv.Atoi(string(token))
		if err != nil {
			return nil, fmt.Errorf("%w: weight %d: %q is not an integer", ErrInput, i+1, token)
		}
		parsed[i] = w
	}
	// weights are integral, so flooring the capacity keeps the same packings
	inst := NewInstance("", int(math.Floor(capacity)), parsed)
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func readTokens(r io.Reader) ([][]byte, error) {
	var tokens [][]byte
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) > 0 && trimmed[0] != '#' {
			for _, field := range bytes.Fields(trimmed) {
				tokens = append(tokens, bytes.Clone(field))
			}
		}
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
