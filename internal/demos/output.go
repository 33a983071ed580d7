package demos

import (
	"fmt"
	"io"

	"h2o/internal/ui"
	"h2o/sdk"
)

func printTable(w io.Writer, t *sdk.TwoDimTable) {
	if t == nil || len(t.Columns) == 0 {
		return
	}
	if t.Name != "" {
		fmt.Fprintln(w, ui.Bold(t.Name))
	}
	fmt.Fprintln(w, ui.Table(t.Headers(), t.Rows()))
}

func printMetrics(w io.Writer, m *sdk.Metrics) {
	pairs := []ui.Pair{
		ui.KV("Category", m.Category),
		ui.KV("MSE", m.MSE.String()),
		ui.KV("RMSE", m.RMSE.String()),
	}
	optional := []struct {
		name  string
		value *sdk.Number
	}{
		{"LogLoss", m.LogLoss},
		{"AUC", m.AUC},
		{"Gini", m.Gini},
		{"R^2", m.R2},
		{"Mean per-class error", m.MeanPerClassError},
	}
	for _, o := range optional {
		if o.value != nil {
			pairs = append(pairs, ui.KV(o.name, o.value.String()))
		}
	}
	fmt.Fprint(w, ui.KeyValues("", pairs...))

	if cm := m.ConfusionMatrix(); cm != nil {
		if cm.Name == "" {
			cm.Name = "Confusion Matrix"
		}
		printTable(w, cm)
	}
}
