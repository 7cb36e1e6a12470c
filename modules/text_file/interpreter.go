package text_file

import (
	"context"
	"fmt"

	"github.com/vk/jayvee/internal/ctxlog"
	"github.com/vk/jayvee/internal/executor"
	"github.com/vk/jayvee/internal/iotype"
	"golang.org/x/text/encoding/htmlindex"
)

// interpret decodes a file with the configured encoding and splits it into
// lines. A trailing line break does not produce an empty last line.
func interpret(ctx context.Context, input iotype.Value, ec *executor.Context) (iotype.Value, error) {
	file := input.(*iotype.File)

	encName, err := ec.Text("encoding")
	if err != nil {
		return nil, err
	}
	lineBreak, err := ec.Regex("lineBreak")
	if err != nil {
		return nil, err
	}

	enc, err := htmlindex.Get(encName)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding '%s': %w", encName, err)
	}
	decoded, err := enc.NewDecoder().Bytes(file.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode '%s' as %s: %w", file.Name, encName, err)
	}

	lines := lineBreak.Split(string(decoded), -1)
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	ctxlog.FromContext(ctx).Debug("Decoded text file.", "file", file.Name, "encoding", encName, "lines", len(lines))

	return &iotype.TextFile{
		Name:      file.Name,
		Extension: file.Extension,
		MimeType:  file.MimeType,
		Lines:     lines,
	}, nil
}
