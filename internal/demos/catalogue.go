package demos

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"h2o/internal/demo"
	"h2o/sdk"
)

// ErrUnknownDemo is returned by Lookup for a name not in the catalogue.
var ErrUnknownDemo = errors.New("unknown demo")

var (
	predictorColumns = []string{"AGE", "RACE", "PSA", "VOL", "GLEASON"}
	idColumn         = "ID"
)

// Catalogue maps demo names to sequences bound to one backend.
type Catalogue struct {
	backend *Backend
	models  map[string]prostateModel
}

// NewCatalogue returns the gbm, glm and deeplearning demos running against b.
func NewCatalogue(b *Backend) *Catalogue {
	c := &Catalogue{backend: b, models: make(map[string]prostateModel)}
	for _, pm := range []prostateModel{gbmModel, glmModel, deepLearningModel} {
		c.models[pm.name] = pm
	}
	return c
}

// Names returns the demo names in sorted order.
func (c *Catalogue) Names() []string {
	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the named demo.
func (c *Catalogue) Lookup(name string) (demo.Sequence, error) {
	pm, ok := c.models[strings.ToLower(name)]
	if !ok {
		return demo.Sequence{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownDemo, name, strings.Join(c.Names(), ", "))
	}
	return c.backend.prostateSequence(pm), nil
}

// Title returns the one-line title of the named demo.
func (c *Catalogue) Title(name string) string {
	return c.models[name].title
}

var gbmModel = prostateModel{
	name:  "gbm",
	title: "Gradient Boosting estimator",
	algo:  "gbm",
	block: `// Build a (small) classification GBM
model, err := client.Train(ctx, "gbm", sdk.TrainSpec{
	X:             []string{"AGE", "RACE", "PSA", "VOL", "GLEASON"},
	Y:             "CAPSULE",
	TrainingFrame: train,
	Params: sdk.Params{
		"distribution": "bernoulli",
		"ntrees":       10,
		"max_depth":    8,
		"min_rows":     10,
		"learn_rate":   0.2,
	},
})`,
	spec: func(_ context.Context, train *sdk.Frame) (sdk.TrainSpec, error) {
		return sdk.TrainSpec{
			X:             predictorColumns,
			Y:             responseCol,
			TrainingFrame: train,
			Params: sdk.Params{
				"distribution": "bernoulli",
				"ntrees":       10,
				"max_depth":    8,
				"min_rows":     10,
				"learn_rate":   0.2,
			},
		}, nil
	},
}

var glmModel = prostateModel{
	name:  "glm",
	title: "Generalized Linear estimator",
	algo:  "glm",
	block: `// Build a (classification) GLM
model, err := client.Train(ctx, "glm", sdk.TrainSpec{
	X:             []string{"AGE", "RACE", "PSA", "VOL", "GLEASON"},
	Y:             "CAPSULE",
	TrainingFrame: train,
	Params: sdk.Params{
		"family": "binomial",
		"alpha":  []float64{0.5},
	},
})`,
	spec: func(_ context.Context, train *sdk.Frame) (sdk.TrainSpec, error) {
		return sdk.TrainSpec{
			X:             predictorColumns,
			Y:             responseCol,
			TrainingFrame: train,
			Params: sdk.Params{
				"family": "binomial",
				"alpha":  []float64{0.5},
			},
		}, nil
	},
}

var deepLearningModel = prostateModel{
	name:  "deeplearning",
	title: "Deep Learning model",
	algo:  "deeplearning",
	block: `// Build a (classification) deep learning model on every other column
x, err := predictors(ctx, train, "ID", "CAPSULE")
model, err := client.Train(ctx, "deeplearning", sdk.TrainSpec{
	X:             x,
	Y:             "CAPSULE",
	TrainingFrame: train,
	Params: sdk.Params{
		"activation": "Tanh",
		"hidden":     []int{10, 10, 10},
		"epochs":     10000,
	},
})`,
	spec: func(ctx context.Context, train *sdk.Frame) (sdk.TrainSpec, error) {
		x, err := predictors(ctx, train, idColumn, responseCol)
		if err != nil {
			return sdk.TrainSpec{}, err
		}
		return sdk.TrainSpec{
			X:             x,
			Y:             responseCol,
			TrainingFrame: train,
			Params: sdk.Params{
				"activation": "Tanh",
				"hidden":     []int{10, 10, 10},
				"epochs":     10000,
			},
		}, nil
	},
}
