// Package sdktest provides an in-memory H2O server for tests.
//
// The server keeps frames and models in memory and implements the subset of
// the REST API the sdk package uses. Every job it starts is already done.
// Models do not learn anything: predictions echo the response column.
package sdktest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Server is a fake H2O server.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	healthy  bool
	frames   map[string]*frame
	models   map[string]*model
	jobs     map[string]string
	nextJob  int
}

type column struct {
	label  string
	typ    string
	data   []float64
	domain []string
}

type frame struct {
	columns []*column
}

func (f *frame) rows() int {
	if len(f.columns) == 0 {
		return 0
	}
	return len(f.columns[0].data)
}

func (f *frame) column(label string) *column {
	for _, c := range f.columns {
		if c.label == label {
			return c
		}
	}
	return nil
}

type model struct {
	id       string
	algo     string
	response string
	params   map[string]string
}

// NewServer starts a healthy fake server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		healthy: true,
		frames:  make(map[string]*frame),
		models:  make(map[string]*model),
		jobs:    make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /3/Cloud", s.handleCloud)
	mux.HandleFunc("POST /3/PostFile", s.handlePostFile)
	mux.HandleFunc("POST /3/ParseSetup", s.handleParseSetup)
	mux.HandleFunc("POST /3/Parse", s.handleParse)
	mux.HandleFunc("GET /3/Jobs/{key}", s.handleJob)
	mux.HandleFunc("GET /3/Frames/{id}", s.handleFrame)
	mux.HandleFunc("GET /3/Frames/{id}/summary", s.handleFrame)
	mux.HandleFunc("POST /3/SplitFrame", s.handleSplitFrame)
	mux.HandleFunc("POST /99/Rapids", s.handleRapids)
	mux.HandleFunc("POST /3/ModelBuilders/{algo}", s.handleModelBuilder)
	mux.HandleFunc("GET /3/Models/{id}", s.handleModel)
	mux.HandleFunc("POST /3/Predictions/models/{model}/frames/{frame}", s.handleScore)
	mux.HandleFunc("POST /3/ModelMetrics/models/{model}/frames/{frame}", s.handleScore)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

// SetHealthy sets the cloud health reported by GET /3/Cloud.
func (s *Server) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

// Requests returns every request received so far as "METHOD /path".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Requested reports whether a request with the given "METHOD /path" was
// received.
func (s *Server) Requested(endpoint string) bool {
	return slices.Contains(s.Requests(), endpoint)
}

// HasFrame reports whether a frame with the given key exists.
func (s *Server) HasFrame(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.frames[id]
	return ok
}

// ModelParam returns a parameter the model with the given key was built with.
func (s *Server) ModelParam(id, name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[id]
	if !ok {
		return "", false
	}
	v, ok := m.params[name]
	return v, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]any{
		"http_status":    status,
		"msg":            fmt.Sprintf(format, args...),
		"exception_type": "water.exceptions.H2OIllegalArgumentException",
	})
}

func key(name string) map[string]string {
	return map[string]string{"name": name}
}

// listParam decodes a ["a","b"] form value.
func listParam(r *http.Request, name string) []string {
	var values []string
	if err := json.Unmarshal([]byte(r.FormValue(name)), &values); err != nil {
		return nil
	}
	return values
}

// startJob records a finished job and returns its JSON form.
// Callers hold s.mu.
func (s *Server) startJob(dest string) map[string]any {
	s.nextJob++
	k := fmt.Sprintf("$job_%d", s.nextJob)
	s.jobs[k] = dest
	return map[string]any{"key": key(k), "dest": key(dest), "status": "CREATED"}
}

func (s *Server) handleCloud(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	healthy := s.healthy
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"version":             "3.46.0.1",
		"cloud_name":          "sdktest",
		"cloud_size":          1,
		"cloud_healthy":       healthy,
		"consensus":           true,
		"locked":              false,
		"cloud_uptime_millis": 1000,
	})
}

func (s *Server) handlePostFile(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file: %v", err)
		return
	}
	defer file.Close()

	fr, err := parseCSV(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "parse file: %v", err)
		return
	}
	dest := r.URL.Query().Get("destination_frame")
	s.mu.Lock()
	s.frames[dest] = fr
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"destination_frame": dest, "total_bytes": 0})
}

func (s *Server) handleParseSetup(w http.ResponseWriter, r *http.Request) {
	sources := listParam(r, "source_frames")
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(sources) != 1 || s.frames[sources[0]] == nil {
		writeError(w, http.StatusNotFound, "source frames %v not found", sources)
		return
	}
	fr := s.frames[sources[0]]
	names := make([]string, len(fr.columns))
	types := make([]string, len(fr.columns))
	for i, c := range fr.columns {
		names[i] = c.label
		types[i] = c.typ
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"parse_type":     "CSV",
		"separator":      44,
		"check_header":   1,
		"number_columns": len(fr.columns),
		"column_names":   names,
		"column_types":   types,
		"chunk_size":     4194304,
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	sources := listParam(r, "source_frames")
	dest := r.FormValue("destination_frame")
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(sources) != 1 || s.frames[sources[0]] == nil {
		writeError(w, http.StatusNotFound, "source frames %v not found", sources)
		return
	}
	s.frames[dest] = s.frames[sources[0]]
	if r.FormValue("delete_on_done") == "true" {
		delete(s.frames, sources[0])
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": s.startJob(dest)})
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	k := r.PathValue("key")
	s.mu.Lock()
	dest, ok := s.jobs[k]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "job %s not found", k)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": []any{map[string]any{
		"key":      key(k),
		"dest":     key(dest),
		"status":   "DONE",
		"progress": 1.0,
	}}})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.frames[id]
	if !ok {
		writeError(w, http.StatusNotFound, "frame %s not found", id)
		return
	}

	rows := fr.rows()
	if n, err := strconv.Atoi(r.URL.Query().Get("row_count")); err == nil {
		rows = min(rows, n)
	}
	columns := make([]map[string]any, len(fr.columns))
	for i, c := range fr.columns {
		lo, hi, mean, missing := stats(c.data)
		columns[i] = map[string]any{
			"label":         c.label,
			"type":          c.typ,
			"missing_count": missing,
			"mins":          []any{jsonNumber(lo)},
			"maxs":          []any{jsonNumber(hi)},
			"mean":          jsonNumber(mean),
			"sigma":         0,
			"domain":        c.domain,
			"data":          jsonNumbers(c.data[:rows]),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"frames": []any{map[string]any{
		"frame_id": key(id),
		"rows":     fr.rows(),
		"columns":  columns,
	}}})
}

func (s *Server) handleSplitFrame(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("dataset")
	var ratios []float64
	if err := json.Unmarshal([]byte(r.FormValue("ratios")), &ratios); err != nil || len(ratios) != 1 {
		writeError(w, http.StatusBadRequest, "bad ratios %q", r.FormValue("ratios"))
		return
	}
	dests := listParam(r, "destination_frames")
	if len(dests) != 2 {
		writeError(w, http.StatusBadRequest, "want two destination frames, got %v", dests)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.frames[id]
	if !ok {
		writeError(w, http.StatusNotFound, "frame %s not found", id)
		return
	}
	cut := int(math.Round(float64(fr.rows()) * ratios[0]))
	s.frames[dests[0]] = fr.slice(0, cut)
	s.frames[dests[1]] = fr.slice(cut, fr.rows())

	job := s.startJob(dests[0])
	writeJSON(w, http.StatusOK, map[string]any{
		"key":                job["key"],
		"destination_frames": []any{key(dests[0]), key(dests[1])},
	})
}

var asFactorAST = regexp.MustCompile(`^\(assign (\S+) \(:= \S+ \(as\.factor \(cols \S+ (\d+)\)\) \d+ \[\]\)\)$`)

func (s *Server) handleRapids(w http.ResponseWriter, r *http.Request) {
	ast := r.FormValue("ast")
	m := asFactorAST.FindStringSubmatch(ast)
	if m == nil {
		writeError(w, http.StatusBadRequest, "unsupported ast %q", ast)
		return
	}
	idx, _ := strconv.Atoi(m[2])

	s.mu.Lock()
	defer s.mu.Unlock()
	fr, ok := s.frames[m[1]]
	if !ok || idx >= len(fr.columns) {
		writeError(w, http.StatusNotFound, "frame %s column %d not found", m[1], idx)
		return
	}
	fr.columns[idx] = fr.columns[idx].asFactor()
	writeJSON(w, http.StatusOK, map[string]any{"key": key(m[1])})
}

func (s *Server) handleModelBuilder(w http.ResponseWriter, r *http.Request) {
	algo := r.PathValue("algo")
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "parse form: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var messages []map[string]string
	reject := func(field, msg string) {
		messages = append(messages, map[string]string{"message_type": "ERRR", "field_name": field, "message": msg})
	}
	fr, ok := s.frames[r.FormValue("training_frame")]
	response := r.FormValue("response_column")
	switch {
	case !ok:
		reject("training_frame", "Training frame not found.")
	case fr.column(response) == nil:
		reject("response_column", "Response column "+response+" not found in frame.")
	}
	if v := r.FormValue("validation_frame"); v != "" && s.frames[v] == nil {
		reject("validation_frame", "Validation frame not found.")
	}
	if len(messages) > 0 {
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages, "error_count": len(messages)})
		return
	}

	id := fmt.Sprintf("%s_model_%d", algo, len(s.models)+1)
	params := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		params[k] = r.PostForm.Get(k)
	}
	s.models[id] = &model{id: id, algo: algo, response: response, params: params}
	writeJSON(w, http.StatusOK, map[string]any{"job": s.startJob(id), "messages": []any{}, "error_count": 0})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[id]
	if !ok {
		writeError(w, http.StatusNotFound, "model %s not found", id)
		return
	}
	fr := s.frames[m.params["training_frame"]]
	if fr == nil {
		fr = &frame{}
	}
	output := map[string]any{
		"model_category": category(fr.column(m.response)),
		"model_summary": map[string]any{
			"name":     "Model Summary",
			"columns":  []any{map[string]string{"name": "number_of_trees", "type": "int", "format": "%d"}},
			"data":     [][]any{{10}},
			"rowcount": 1,
		},
		"training_metrics": s.metrics(m, fr),
	}
	if v := s.frames[m.params["validation_frame"]]; v != nil {
		output["validation_metrics"] = s.metrics(m, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": []any{map[string]any{
		"model_id": key(id),
		"algo":     m.algo,
		"output":   output,
	}}})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[r.PathValue("model")]
	if !ok {
		writeError(w, http.StatusNotFound, "model %s not found", r.PathValue("model"))
		return
	}
	fr, ok := s.frames[r.PathValue("frame")]
	if !ok {
		writeError(w, http.StatusNotFound, "frame %s not found", r.PathValue("frame"))
		return
	}

	resp := map[string]any{"model_metrics": []any{s.metrics(m, fr)}}
	if strings.HasPrefix(r.URL.Path, "/3/Predictions/") {
		pred := fmt.Sprintf("prediction_%s_on_%s", m.id, r.PathValue("frame"))
		if c := fr.column(m.response); c != nil {
			p := *c
			p.label = "predict"
			s.frames[pred] = &frame{columns: []*column{&p}}
		}
		resp["predictions_frame"] = key(pred)
	}
	writeJSON(w, http.StatusOK, resp)
}

// metrics scores a model that predicts its response perfectly.
func (s *Server) metrics(m *model, fr *frame) map[string]any {
	c := fr.column(m.response)
	out := map[string]any{
		"description":    "Metrics reported on full training frame",
		"model_category": category(c),
		"nobs":           fr.rows(),
		"MSE":            0,
		"RMSE":           0,
	}
	switch category(c) {
	case "Regression":
		out["r2"] = 1
	default:
		out["logloss"] = 0
		out["AUC"] = 1
		out["mean_per_class_error"] = 0
		out["cm"] = map[string]any{"table": confusionMatrix(c)}
	}
	return out
}

func category(c *column) string {
	switch {
	case c == nil || c.typ != "enum":
		return "Regression"
	case len(c.domain) == 2:
		return "Binomial"
	default:
		return "Multinomial"
	}
}

func confusionMatrix(c *column) map[string]any {
	counts := make([]float64, len(c.domain))
	for _, v := range c.data {
		if !math.IsNaN(v) {
			counts[int(v)]++
		}
	}

	columns := []any{}
	data := [][]any{}
	for i, level := range c.domain {
		columns = append(columns, map[string]string{"name": level, "type": "long", "format": "%d"})
		col := make([]any, len(c.domain))
		for j := range col {
			col[j] = 0.0
			if i == j {
				col[j] = counts[i]
			}
		}
		data = append(data, col)
	}
	return map[string]any{
		"name":     "Confusion Matrix",
		"columns":  columns,
		"data":     data,
		"rowcount": len(c.domain),
	}
}

func (f *frame) slice(from, to int) *frame {
	out := &frame{columns: make([]*column, len(f.columns))}
	for i, c := range f.columns {
		out.columns[i] = &column{
			label:  c.label,
			typ:    c.typ,
			data:   slices.Clone(c.data[from:to]),
			domain: c.domain,
		}
	}
	return out
}

func (c *column) asFactor() *column {
	if c.typ == "enum" {
		return c
	}
	var levels []float64
	for _, v := range c.data {
		if !math.IsNaN(v) && !slices.Contains(levels, v) {
			levels = append(levels, v)
		}
	}
	slices.Sort(levels)

	out := &column{label: c.label, typ: "enum", data: make([]float64, len(c.data))}
	for _, l := range levels {
		out.domain = append(out.domain, strconv.FormatFloat(l, 'g', -1, 64))
	}
	for i, v := range c.data {
		out.data[i] = math.NaN()
		if !math.IsNaN(v) {
			out.data[i] = float64(slices.Index(levels, v))
		}
	}
	return out
}

func parseCSV(r io.Reader) (*frame, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	fr := &frame{}
	for i, label := range records[0] {
		c := &column{label: label, typ: "real"}
		var text []string
		for _, rec := range records[1:] {
			text = append(text, rec[i])
		}
		for _, v := range text {
			if v == "" {
				c.data = append(c.data, math.NaN())
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.typ = "enum"
				break
			}
			c.data = append(c.data, f)
		}
		if c.typ == "enum" {
			c.data = c.data[:0]
			for _, v := range text {
				idx := slices.Index(c.domain, v)
				if idx < 0 {
					c.domain = append(c.domain, v)
					idx = len(c.domain) - 1
				}
				c.data = append(c.data, float64(idx))
			}
		} else if isIntegral(c.data) {
			c.typ = "int"
		}
		fr.columns = append(fr.columns, c)
	}
	return fr, nil
}

func isIntegral(data []float64) bool {
	for _, v := range data {
		if !math.IsNaN(v) && v != math.Trunc(v) {
			return false
		}
	}
	return true
}

func stats(data []float64) (lo, hi, mean float64, missing int) {
	lo, hi = math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range data {
		if math.IsNaN(v) {
			missing++
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
		mean += v
		n++
	}
	if n == 0 {
		return math.NaN(), math.NaN(), math.NaN(), missing
	}
	return lo, hi, mean / float64(n), missing
}

// jsonNumber writes non-finite values the way the server does.
func jsonNumber(v float64) any {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	default:
		return v
	}
}

func jsonNumbers(data []float64) []any {
	out := make([]any, len(data))
	for i, v := range data {
		out[i] = jsonNumber(v)
	}
	return out
}
