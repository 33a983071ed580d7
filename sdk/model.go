package sdk

import (
	"context"
	"fmt"
	"net/url"
	"slices"
)

// Model is a proxy for a model held by the server.
type Model struct {
	ID     string
	Algo   string
	client *Client
}

// Model returns a proxy for the model with the given key.
func (c *Client) Model(id string) *Model {
	return &Model{ID: id, client: c}
}

// TrainSpec describes a model build. An empty X means every column except Y.
type TrainSpec struct {
	X               []string
	Y               string
	TrainingFrame   *Frame
	ValidationFrame *Frame
	// Params are passed to the model builder as-is.
	Params Params
}

type modelBuilderResponse struct {
	Job        jobJSON             `json:"job"`
	Messages   []ValidationMessage `json:"messages"`
	ErrorCount int                 `json:"error_count"`
}

// Train builds a model with the given algorithm (for example "gbm", "glm" or
// "deeplearning") and waits for the build job.
func (c *Client) Train(ctx context.Context, algo string, spec TrainSpec) (*Model, error) {
	if spec.TrainingFrame == nil {
		return nil, fmt.Errorf("train %s: training frame is required", algo)
	}
	if spec.Y == "" {
		return nil, fmt.Errorf("train %s: response column is required", algo)
	}

	var ignored []string
	if len(spec.X) > 0 {
		columns, err := spec.TrainingFrame.Columns(ctx)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", algo, err)
		}
		for _, name := range spec.X {
			if !slices.Contains(columns, name) {
				return nil, fmt.Errorf("train %s: column %s: %w", algo, name, ErrUnknownColumn)
			}
		}
		for _, name := range columns {
			if name != spec.Y && !slices.Contains(spec.X, name) {
				ignored = append(ignored, name)
			}
		}
	}

	params := Params{}
	for k, v := range spec.Params {
		params[k] = v
	}
	params["training_frame"] = spec.TrainingFrame.ID
	params["response_column"] = spec.Y
	if spec.ValidationFrame != nil {
		params["validation_frame"] = spec.ValidationFrame.ID
	}
	if ignored != nil {
		params["ignored_columns"] = ignored
	}

	var resp modelBuilderResponse
	if err := c.API(ctx, "POST /3/ModelBuilders/"+url.PathEscape(algo), params, &resp); err != nil {
		return nil, fmt.Errorf("train %s: %w", algo, err)
	}
	if resp.ErrorCount > 0 {
		return nil, &ValidationError{Algo: algo, Messages: resp.Messages}
	}

	job, err := c.WaitJob(ctx, resp.Job.Key.Name)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", algo, err)
	}
	id := job.Dest
	if id == "" {
		id = resp.Job.Dest.Name
	}
	return &Model{ID: id, Algo: algo, client: c}, nil
}

// Metrics are the scores of a model on one frame. Fields the model category
// does not produce are nil.
type Metrics struct {
	Description       string       `json:"description"`
	Category          string       `json:"model_category"`
	Observations      int64        `json:"nobs"`
	MSE               Number       `json:"MSE"`
	RMSE              Number       `json:"RMSE"`
	LogLoss           *Number      `json:"logloss"`
	AUC               *Number      `json:"AUC"`
	Gini              *Number      `json:"Gini"`
	R2                *Number      `json:"r2"`
	MeanPerClassError *Number      `json:"mean_per_class_error"`
	HitRatioTable     *TwoDimTable `json:"hit_ratio_table"`
	CM                *struct {
		Table *TwoDimTable `json:"table"`
	} `json:"cm"`
}

// ConfusionMatrix returns the confusion matrix, or nil for regression.
func (m *Metrics) ConfusionMatrix() *TwoDimTable {
	if m == nil || m.CM == nil {
		return nil
	}
	return m.CM.Table
}

// Split selects which metrics of a model to report.
type Split string

const (
	Training        Split = "train"
	Validation      Split = "valid"
	CrossValidation Split = "xval"
)

// ModelInfo is the server's description of a built model.
type ModelInfo struct {
	ID       string
	Algo     string
	Category string
	// Summary is the model summary table (number of trees, layers...).
	Summary                *TwoDimTable
	VariableImportances    *TwoDimTable
	TrainingMetrics        *Metrics
	ValidationMetrics      *Metrics
	CrossValidationMetrics *Metrics
}

type modelJSON struct {
	ModelID keyJSON `json:"model_id"`
	Algo    string  `json:"algo"`
	Output  struct {
		Category               string       `json:"model_category"`
		Summary                *TwoDimTable `json:"model_summary"`
		VariableImportances    *TwoDimTable `json:"variable_importances"`
		TrainingMetrics        *Metrics     `json:"training_metrics"`
		ValidationMetrics      *Metrics     `json:"validation_metrics"`
		CrossValidationMetrics *Metrics     `json:"cross_validation_metrics"`
	} `json:"output"`
}

type modelsResponse struct {
	Models []modelJSON `json:"models"`
}

// Show fetches the model description.
func (m *Model) Show(ctx context.Context) (*ModelInfo, error) {
	var resp modelsResponse
	if err := m.client.API(ctx, "GET /3/Models/"+url.PathEscape(m.ID), nil, &resp); err != nil {
		return nil, fmt.Errorf("show model %s: %w", m.ID, err)
	}
	if len(resp.Models) == 0 {
		return nil, fmt.Errorf("show model %s: %w", m.ID, ErrNotFound)
	}
	mj := resp.Models[0]
	if m.Algo == "" {
		m.Algo = mj.Algo
	}
	return &ModelInfo{
		ID:                     mj.ModelID.Name,
		Algo:                   mj.Algo,
		Category:               mj.Output.Category,
		Summary:                mj.Output.Summary,
		VariableImportances:    mj.Output.VariableImportances,
		TrainingMetrics:        mj.Output.TrainingMetrics,
		ValidationMetrics:      mj.Output.ValidationMetrics,
		CrossValidationMetrics: mj.Output.CrossValidationMetrics,
	}, nil
}

// Metrics returns the metrics recorded for a split, or nil.
func (i *ModelInfo) Metrics(split Split) *Metrics {
	switch split {
	case Training:
		return i.TrainingMetrics
	case Validation:
		return i.ValidationMetrics
	case CrossValidation:
		return i.CrossValidationMetrics
	default:
		return nil
	}
}

// HitRatioTable returns the top-k hit ratios per split. With no split given
// the training metrics are used. Splits without a table are left out.
func (i *ModelInfo) HitRatioTable(which ...Split) map[Split]*TwoDimTable {
	tables := make(map[Split]*TwoDimTable)
	for _, split := range defaultSplits(which) {
		if m := i.Metrics(split); m != nil && m.HitRatioTable != nil {
			tables[split] = m.HitRatioTable
		}
	}
	return tables
}

// MeanPerClassError returns the mean per-class error per split. With no split
// given the training metrics are used. Splits without the value are left out.
func (i *ModelInfo) MeanPerClassError(which ...Split) map[Split]Number {
	errs := make(map[Split]Number)
	for _, split := range defaultSplits(which) {
		if m := i.Metrics(split); m != nil && m.MeanPerClassError != nil {
			errs[split] = *m.MeanPerClassError
		}
	}
	return errs
}

func defaultSplits(which []Split) []Split {
	if len(which) == 0 {
		return []Split{Training}
	}
	return which
}

type modelMetricsResponse struct {
	PredictionsFrame keyJSON    `json:"predictions_frame"`
	ModelMetrics     []*Metrics `json:"model_metrics"`
}

func (m *Model) scoreEndpoint(kind string, f *Frame) string {
	return fmt.Sprintf("POST /3/%s/models/%s/frames/%s", kind, url.PathEscape(m.ID), url.PathEscape(f.ID))
}

// Predict scores a frame and returns the frame holding the predictions.
func (m *Model) Predict(ctx context.Context, f *Frame) (*Frame, error) {
	var resp modelMetricsResponse
	if err := m.client.API(ctx, m.scoreEndpoint("Predictions", f), nil, &resp); err != nil {
		return nil, fmt.Errorf("predict %s on %s: %w", m.ID, f.ID, err)
	}
	if resp.PredictionsFrame.Name == "" {
		return nil, fmt.Errorf("predict %s on %s: no predictions frame", m.ID, f.ID)
	}
	return m.client.Frame(resp.PredictionsFrame.Name), nil
}

// Performance scores a frame and returns the metrics.
func (m *Model) Performance(ctx context.Context, f *Frame) (*Metrics, error) {
	var resp modelMetricsResponse
	if err := m.client.API(ctx, m.scoreEndpoint("ModelMetrics", f), nil, &resp); err != nil {
		return nil, fmt.Errorf("performance %s on %s: %w", m.ID, f.ID, err)
	}
	if len(resp.ModelMetrics) == 0 || resp.ModelMetrics[0] == nil {
		return nil, fmt.Errorf("performance %s on %s: %w", m.ID, f.ID, ErrNotFound)
	}
	return resp.ModelMetrics[0], nil
}

// ConfusionMatrix scores a frame and returns its confusion matrix.
func (m *Model) ConfusionMatrix(ctx context.Context, f *Frame) (*TwoDimTable, error) {
	var resp modelMetricsResponse
	if err := m.client.API(ctx, m.scoreEndpoint("Predictions", f), nil, &resp); err != nil {
		return nil, fmt.Errorf("confusion matrix %s on %s: %w", m.ID, f.ID, err)
	}
	if len(resp.ModelMetrics) == 0 || resp.ModelMetrics[0].ConfusionMatrix() == nil {
		return nil, fmt.Errorf("confusion matrix %s on %s: %w", m.ID, f.ID, ErrNotFound)
	}
	return resp.ModelMetrics[0].ConfusionMatrix(), nil
}
