// Package demos holds the scripted H2O demos run by "h2o demo".
package demos

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"h2o/internal/ui"
	"h2o/sdk"
)

// DefaultDataDir is where the demo datasets are looked up when no data
// directory is configured.
const DefaultDataDir = "h2o_data"

// Backend is what the demos talk to.
type Backend struct {
	Client *sdk.Client
	// DataDir holds prostate.csv. Defaults to DefaultDataDir.
	DataDir string
	// Out receives everything the demo steps print. Defaults to stdout.
	Out io.Writer
}

func (b *Backend) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

// DataFile returns the path of a bundled dataset.
func (b *Backend) DataFile(name string) (string, error) {
	dir := b.DataDir
	if dir == "" {
		dir = DefaultDataDir
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("locate dataset %s (set --data-dir or H2O_DATA_DIR): %w", name, err)
	}
	return path, nil
}

// Connect checks that the server is up and prints what it is. It is the
// default initializer of every demo.
func (b *Backend) Connect(ctx context.Context) error {
	cloud, err := b.Client.Ping(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(b.out(), ui.KeyValues("",
		ui.KV("H2O cluster", ui.Accent(cloud.Name)),
		ui.KV("URL", b.Client.URL()),
		ui.KV("Version", cloud.Version),
		ui.KV("Nodes", strconv.Itoa(cloud.Size)),
		ui.KV("Uptime", (time.Duration(cloud.Uptime)*time.Millisecond).String()),
		ui.KV("Healthy", ui.SuccessStyle.Render("yes")),
	))
	return nil
}
