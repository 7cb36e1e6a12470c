package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
)

// ErrUnsupportedEnclosing is returned for an enclosing other than the double
// quote, which is the only one the CSV reader implements.
var ErrUnsupportedEnclosing = errors.New(`only '"' is supported as enclosing character`)

func interpretCSV(ctx context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	file := input.(*iotype.TextFile)

	delimiter, err := ec.Text("delimiter")
	if err != nil {
		return nil, err
	}
	enclosing, err := ec.Text("enclosing")
	if err != nil {
		return nil, err
	}
	trim, err := ec.Bool("trimSpace")
	if err != nil {
		return nil, err
	}

	comma, size := utf8.DecodeRuneInString(delimiter)
	if size == 0 || size != len(delimiter) {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
	}
	if enclosing != `"` {
		return nil, fmt.Errorf("enclosing %q: %w", enclosing, ErrUnsupportedEnclosing)
	}

	r := csv.NewReader(strings.NewReader(strings.Join(file.Lines, "\n")))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = trim

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse '%s' as CSV: %w", file.Name, err)
		}
		if trim {
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, record)
	}

	s := iotype.NewSheet(rows)
	ctxlog.FromContext(ctx).Debug("Parsed CSV.", "file", file.Name, "rows", s.Height(), "columns", s.Width())
	return s, nil
}
