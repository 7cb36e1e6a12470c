package text_file

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"github.com/vk/jayvee/internal/valuetype"
)

func withLines(f *iotype.TextFile, lines []string) *iotype.TextFile {
	out := *f
	out.Lines = lines
	return &out
}

// deleteLines removes the listed one-based lines.
func deleteLines(_ context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	file := input.(*iotype.TextFile)
	coll, err := ec.Collection("lines")
	if err != nil {
		return nil, err
	}

	drop := make(map[int]struct{}, len(coll))
	for _, v := range coll {
		n := int(v.(valuetype.Number))
		if n < 1 || n > len(file.Lines) {
			return nil, fmt.Errorf("line %d does not exist in the text file, only %d line(s) are present", n, len(file.Lines))
		}
		drop[n-1] = struct{}{}
	}

	kept := make([]string, 0, len(file.Lines))
	for i, line := range file.Lines {
		if _, ok := drop[i]; !ok {
			kept = append(kept, line)
		}
	}
	return withLines(file, kept), nil
}

// selectRange keeps the one-based, inclusive range lineFrom..lineTo. Bounds
// past the end of the file are clamped.
func selectRange(_ context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	file := input.(*iotype.TextFile)
	from, err := ec.Integer("lineFrom")
	if err != nil {
		return nil, err
	}
	to, err := ec.Integer("lineTo")
	if err != nil {
		return nil, err
	}
	if from < 1 {
		return nil, fmt.Errorf("lineFrom must be at least 1, got %d", from)
	}
	if to < from {
		return nil, fmt.Errorf("lineTo (%d) must not be smaller than lineFrom (%d)", to, from)
	}

	start := min(from-1, len(file.Lines))
	end := min(to, len(file.Lines))
	return withLines(file, slices.Clone(file.Lines[start:end])), nil
}
