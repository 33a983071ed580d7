package sdk

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"strings"
)

// Frame is a proxy for a data frame held by the server.
type Frame struct {
	ID     string
	client *Client
}

// Frame returns a proxy for the frame with the given key.
func (c *Client) Frame(id string) *Frame {
	return &Frame{ID: id, client: c}
}

// ColumnSummary is the per-column part of a frame summary.
type ColumnSummary struct {
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Missing    int64    `json:"missing_count"`
	Mins       []Number `json:"mins"`
	Maxs       []Number `json:"maxs"`
	Mean       Number   `json:"mean"`
	Sigma      Number   `json:"sigma"`
	Domain     []string `json:"domain"`
	Data       []Number `json:"data"`
	StringData []string `json:"string_data"`
}

// Min returns the smallest value, or NaN when the server sent none.
func (c ColumnSummary) Min() Number {
	if len(c.Mins) == 0 {
		return Number(math.NaN())
	}
	return c.Mins[0]
}

// Max returns the largest value, or NaN when the server sent none.
func (c ColumnSummary) Max() Number {
	if len(c.Maxs) == 0 {
		return Number(math.NaN())
	}
	return c.Maxs[0]
}

// FrameSummary is the column statistics of a frame.
type FrameSummary struct {
	ID      string
	Rows    int64
	Columns []ColumnSummary
}

type frameJSON struct {
	FrameID keyJSON         `json:"frame_id"`
	Rows    int64           `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}

type framesResponse struct {
	Frames []frameJSON `json:"frames"`
}

type parseSetupJSON struct {
	ParseType     string   `json:"parse_type"`
	Separator     int      `json:"separator"`
	SingleQuotes  bool     `json:"single_quotes"`
	CheckHeader   int      `json:"check_header"`
	NumberColumns int      `json:"number_columns"`
	ColumnNames   []string `json:"column_names"`
	ColumnTypes   []string `json:"column_types"`
	ChunkSize     int      `json:"chunk_size"`
}

// UploadFile sends a local file to the server and parses it into a frame
// named after the file ("prostate.csv" becomes "prostate.hex").
func (c *Client) UploadFile(ctx context.Context, path string) (*Frame, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var posted struct {
		DestinationFrame string `json:"destination_frame"`
	}
	if err := c.postFile(ctx, path, Params{"destination_frame": base + "_upload"}, &posted); err != nil {
		return nil, err
	}
	raw := posted.DestinationFrame
	if raw == "" {
		raw = base + "_upload"
	}

	var setup parseSetupJSON
	if err := c.API(ctx, "POST /3/ParseSetup", Params{"source_frames": []string{raw}}, &setup); err != nil {
		return nil, fmt.Errorf("upload %s: parse setup: %w", path, err)
	}

	dest := base + ".hex"
	var parsed struct {
		Job jobJSON `json:"job"`
	}
	params := Params{
		"destination_frame": dest,
		"source_frames":     []string{raw},
		"parse_type":        setup.ParseType,
		"separator":         setup.Separator,
		"single_quotes":     setup.SingleQuotes,
		"check_header":      setup.CheckHeader,
		"number_columns":    setup.NumberColumns,
		"column_names":      setup.ColumnNames,
		"column_types":      setup.ColumnTypes,
		"chunk_size":        setup.ChunkSize,
		"delete_on_done":    true,
	}
	if err := c.API(ctx, "POST /3/Parse", params, &parsed); err != nil {
		return nil, fmt.Errorf("upload %s: parse: %w", path, err)
	}

	job, err := c.WaitJob(ctx, parsed.Job.Key.Name)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", path, err)
	}
	if job.Dest != "" {
		dest = job.Dest
	}
	return c.Frame(dest), nil
}

// Summary returns per-column statistics.
func (f *Frame) Summary(ctx context.Context) (*FrameSummary, error) {
	var resp framesResponse
	if err := f.client.API(ctx, "GET /3/Frames/"+url.PathEscape(f.ID)+"/summary", nil, &resp); err != nil {
		return nil, fmt.Errorf("summary %s: %w", f.ID, err)
	}
	if len(resp.Frames) == 0 {
		return nil, fmt.Errorf("summary %s: %w", f.ID, ErrNotFound)
	}
	fr := resp.Frames[0]
	return &FrameSummary{ID: fr.FrameID.Name, Rows: fr.Rows, Columns: fr.Columns}, nil
}

// Columns returns the column names in order.
func (f *Frame) Columns(ctx context.Context) ([]string, error) {
	summary, err := f.Summary(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(summary.Columns))
	for i, c := range summary.Columns {
		names[i] = c.Label
	}
	return names, nil
}

// Head returns the first n rows as a table. Categorical values are shown by
// level name.
func (f *Frame) Head(ctx context.Context, n int) (*TwoDimTable, error) {
	var resp framesResponse
	endpoint := fmt.Sprintf("GET /3/Frames/%s", url.PathEscape(f.ID))
	if err := f.client.API(ctx, endpoint, Params{"row_count": n}, &resp); err != nil {
		return nil, fmt.Errorf("head %s: %w", f.ID, err)
	}
	if len(resp.Frames) == 0 {
		return nil, fmt.Errorf("head %s: %w", f.ID, ErrNotFound)
	}

	cols := resp.Frames[0].Columns
	t := &TwoDimTable{
		Name:    f.ID,
		Columns: make([]TableColumn, len(cols)),
		Data:    make([][]any, len(cols)),
	}
	for i, col := range cols {
		t.Columns[i] = TableColumn{Name: col.Label, Type: col.Type}
		t.Data[i] = columnValues(col, n)
		t.RowCount = max(t.RowCount, len(t.Data[i]))
	}
	return t, nil
}

func columnValues(col ColumnSummary, n int) []any {
	if col.Type == "string" || col.Type == "uuid" {
		values := make([]any, 0, min(n, len(col.StringData)))
		for _, s := range col.StringData[:min(n, len(col.StringData))] {
			values = append(values, s)
		}
		return values
	}

	data := col.Data[:min(n, len(col.Data))]
	values := make([]any, 0, len(data))
	for _, v := range data {
		switch {
		case v.IsNaN():
			values = append(values, "")
		case col.Type == "enum" && int(v) >= 0 && int(v) < len(col.Domain):
			values = append(values, col.Domain[int(v)])
		default:
			values = append(values, v.Float())
		}
	}
	return values
}

// Split divides the frame into two frames holding about ratio and 1-ratio of
// the rows.
func (f *Frame) Split(ctx context.Context, ratio float64) (*Frame, *Frame, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("split %s: ratio %v must be between 0 and 1", f.ID, ratio)
	}

	dest := []string{f.ID + "_part0", f.ID + "_part1"}
	var resp struct {
		Key               keyJSON   `json:"key"`
		DestinationFrames []keyJSON `json:"destination_frames"`
	}
	params := Params{
		"dataset":            f.ID,
		"ratios":             []float64{ratio},
		"destination_frames": dest,
	}
	if err := f.client.API(ctx, "POST /3/SplitFrame", params, &resp); err != nil {
		return nil, nil, fmt.Errorf("split %s: %w", f.ID, err)
	}
	if resp.Key.Name != "" {
		if _, err := f.client.WaitJob(ctx, resp.Key.Name); err != nil {
			return nil, nil, fmt.Errorf("split %s: %w", f.ID, err)
		}
	}
	if len(resp.DestinationFrames) == 2 {
		dest = []string{resp.DestinationFrames[0].Name, resp.DestinationFrames[1].Name}
	}
	return f.client.Frame(dest[0]), f.client.Frame(dest[1]), nil
}

// AsFactor converts a column to a categorical column in place.
func (f *Frame) AsFactor(ctx context.Context, column string) error {
	names, err := f.Columns(ctx)
	if err != nil {
		return fmt.Errorf("as factor %s: %w", column, err)
	}
	idx := -1
	for i, name := range names {
		if name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("as factor %s in %s: %w", column, f.ID, ErrUnknownColumn)
	}

	ast := fmt.Sprintf("(assign %[1]s (:= %[1]s (as.factor (cols %[1]s %[2]d)) %[2]d []))", f.ID, idx)
	if err := f.client.API(ctx, "POST /99/Rapids", Params{"ast": ast}, nil); err != nil {
		return fmt.Errorf("as factor %s: %w", column, err)
	}
	return nil
}
