package batch

import (
	"fmt"

	cone "Taper/internal/calc/cone"
	"Taper/internal/geometry"
	"Taper/internal/i18n"
)

const (
	// MaxItems bounds the rows of one batch.
	MaxItems = 1000
	// MaxBodySize bounds a JSON batch request.
	MaxBodySize = 1 << 20 // 1MB
)

var ErrTooManyItems = fmt.Errorf("more than %d items", MaxItems)

type BatchInput struct {
	Items []cone.Input `json:"items"`
}

// Item is one solved row. Err is set instead of Parameters when the row failed.
type Item struct {
	Input      cone.Input         `json:"input"`
	Solved     string             `json:"solved,omitempty"`
	Parameters *geometry.Solution `json:"parameters,omitempty"`
	Message    string             `json:"message,omitempty"`
	Err        error              `json:"-"`
	Error      string             `json:"error,omitempty"`
}

type BatchResult struct {
	Count   int    `json:"count"`
	Failed  int    `json:"failed"`
	Results []Item `json:"results"`
}

// Calculate solves every item independently. A failing row does not stop the batch.
func Calculate(in BatchInput, l i18n.LabelSet) (BatchResult, error) {
	if len(in.Items) == 0 {
		return BatchResult{}, fmt.Errorf("no items")
	}
	if len(in.Items) > MaxItems {
		return BatchResult{}, fmt.Errorf("%w: got %d", ErrTooManyItems, len(in.Items))
	}
	out := BatchResult{Results: make([]Item, 0, len(in.Items))}
	for _, input := range in.Items {
		out.Results = append(out.Results, solve(input, l))
	}
	for _, it := range out.Results {
		if it.Err != nil {
			out.Failed++
		}
	}
	out.Count = len(out.Results)
	return out, nil
}

func solve(input cone.Input, l i18n.LabelSet) Item {
	it := Item{Input: input}
	s, err := cone.Solve(input)
	if err != nil {
		it.Err = err
		it.Error = cone.ErrorMessage(l, err)
		return it
	}
	res := cone.Result{Parameters: s}
	res.Messages(l)
	it.Solved = s.Solved.String()
	it.Parameters = &s
	it.Message = res.Message
	return it
}
