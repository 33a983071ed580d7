package demos

import (
	"context"
	"fmt"
	"strconv"

	"h2o/internal/demo"
	"h2o/internal/ui"
	"h2o/sdk"
)

const (
	prostateFile = "prostate.csv"
	responseCol  = "CAPSULE"
	trainRatio   = 0.70
	previewRows  = 10
)

const prostateDescription = `
	Demo of H2O's %s.

	This demo uploads a dataset to h2o, parses it, and shows a description.
	Then it divides the dataset into training and test sets, builds a %s
	from the training set, and makes predictions for the test set.
	Finally, default performance metrics are displayed.
`

// prostateBlocks are the display text of the shared workflow. The model
// block is filled in per algorithm.
func prostateBlocks(build string) []string {
	return []string{
		`// Connect to H2O
backend.Connect(ctx)`,
		`// Upload the prostate dataset that comes with the demos
prostate, err := client.UploadFile(ctx, "h2o_data/prostate.csv")`,
		`// Print a description of the prostate data
summary, err := prostate.Summary(ctx)`,
		`// Randomly split the dataset into ~70/30, training/test sets
train, test, err := prostate.Split(ctx, 0.70)`,
		`// Convert the response columns to factors (for binary classification problems)
train.AsFactor(ctx, "CAPSULE")
test.AsFactor(ctx, "CAPSULE")`,
		build,
		`// Show the model
info, err := model.Show(ctx)`,
		`// Predict on the test set and show the first ten predictions
predictions, err := model.Predict(ctx, test)
head, err := predictions.Head(ctx, 10)`,
		`// Show default performance metrics
performance, err := model.Performance(ctx, test)`,
	}
}

// prostateModel describes the model a prostate demo builds.
type prostateModel struct {
	name  string
	title string
	algo  string
	// block is the display text of the model build.
	block string
	spec  func(ctx context.Context, train *sdk.Frame) (sdk.TrainSpec, error)
}

func (b *Backend) prostateSequence(pm prostateModel) demo.Sequence {
	return demo.Sequence{
		Name:        pm.name,
		Description: fmt.Sprintf(prostateDescription, pm.title, pm.algo),
		Blocks:      prostateBlocks(pm.block),
		Init:        b.Connect,
		Body: func(ctx context.Context, s *demo.Session) error {
			return b.runProstate(ctx, s, pm)
		},
	}
}

func (b *Backend) runProstate(ctx context.Context, s *demo.Session, pm prostateModel) error {
	var (
		prostate    *sdk.Frame
		train, test *sdk.Frame
		model       *sdk.Model
	)
	c := b.Client
	w := b.out()

	return s.Do(ctx,
		s.Init,
		func(ctx context.Context) error {
			path, err := b.DataFile(prostateFile)
			if err != nil {
				return err
			}
			prostate, err = c.UploadFile(ctx, path)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, ui.SuccessMsg("Uploaded %s as %s", prostateFile, ui.Bold(prostate.ID)))
			return nil
		},
		func(ctx context.Context) error {
			summary, err := prostate.Summary(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, ui.Muted(fmt.Sprintf("Rows: %d  Cols: %d", summary.Rows, len(summary.Columns))))
			fmt.Fprintln(w, ui.Table(summaryTable(summary)))
			return nil
		},
		func(ctx context.Context) error {
			var err error
			train, test, err = prostate.Split(ctx, trainRatio)
			if err != nil {
				return err
			}
			fmt.Fprint(w, ui.KeyValues("", ui.KV("train", train.ID), ui.KV("test", test.ID)))
			return nil
		},
		func(ctx context.Context) error {
			for _, f := range []*sdk.Frame{train, test} {
				if err := f.AsFactor(ctx, responseCol); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context) error {
			spec, err := pm.spec(ctx, train)
			if err != nil {
				return err
			}
			model, err = c.Train(ctx, pm.algo, spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, ui.SuccessMsg("Built %s model %s", pm.algo, ui.Bold(model.ID)))
			return nil
		},
		func(ctx context.Context) error {
			info, err := model.Show(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(w, ui.KeyValues("",
				ui.KV("Model", info.ID),
				ui.KV("Algorithm", info.Algo),
				ui.KV("Category", info.Category),
			))
			printTable(w, info.Summary)
			if m := info.TrainingMetrics; m != nil {
				fmt.Fprintln(w, ui.Bold("Training metrics"))
				printMetrics(w, m)
			}
			return nil
		},
		func(ctx context.Context) error {
			predictions, err := model.Predict(ctx, test)
			if err != nil {
				return err
			}
			head, err := predictions.Head(ctx, previewRows)
			if err != nil {
				return err
			}
			printTable(w, head)
			return nil
		},
		func(ctx context.Context) error {
			performance, err := model.Performance(ctx, test)
			if err != nil {
				return err
			}
			printMetrics(w, performance)
			return nil
		},
	)
}

// predictors returns every column of f except the excluded ones.
func predictors(ctx context.Context, f *sdk.Frame, exclude ...string) ([]string, error) {
	names, err := f.Columns(ctx)
	if err != nil {
		return nil, err
	}
	var x []string
	for _, name := range names {
		skip := false
		for _, e := range exclude {
			skip = skip || name == e
		}
		if !skip {
			x = append(x, name)
		}
	}
	return x, nil
}

func summaryTable(s *sdk.FrameSummary) ([]string, [][]string) {
	headers := []string{"", "type", "min", "mean", "max", "missing"}
	rows := make([][]string, len(s.Columns))
	for i, c := range s.Columns {
		rows[i] = []string{c.Label, c.Type, c.Min().String(), c.Mean.String(), c.Max().String(), strconv.FormatInt(c.Missing, 10)}
	}
	return headers, rows
}
