// Package artifact reads and writes the flat files that connect the deriver
// to the lookup service.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/accident-risk/internal/classifier"
	"github.com/sells-group/accident-risk/internal/model"
)

// Artifact file names inside the artifacts directory.
const (
	TableFile    = "accident_prone_places.json"
	FeaturesFile = "feature_names.json"
	MetadataFile = "model_metadata.json"
	ModelFile    = "accident_prediction_model.gob"
)

// Bundle is the full set of derived artifacts.
type Bundle struct {
	Table    model.LocationTable
	Features []string
	Metadata model.ModelMetadata
	Model    *classifier.Model
}

// Write stores every artifact of b under dir, creating dir if needed. Each
// file is written to a temporary name first and renamed into place.
func Write(ctx context.Context, dir string, b *Bundle) error {
	if b == nil || b.Model == nil {
		return eris.New("artifact: bundle has no model")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "artifact: create dir %s", dir)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return writeJSON(gctx, dir, TableFile, b.Table) })
	g.Go(func() error { return writeJSON(gctx, dir, FeaturesFile, b.Features) })
	g.Go(func() error { return writeJSON(gctx, dir, MetadataFile, b.Metadata) })
	g.Go(func() error {
		var buf bytes.Buffer
		if err := b.Model.Save(&buf); err != nil {
			return err
		}
		return writeFile(gctx, dir, ModelFile, buf.Bytes())
	})
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "artifact: write bundle")
	}

	zap.L().Info("artifacts written",
		zap.String("dir", dir),
		zap.Int("locations", b.Table.Statistics.Len()),
		zap.Int("features", len(b.Features)),
	)
	return nil
}

// Load reads every artifact from dir. Any missing or malformed file fails the load.
func Load(ctx context.Context, dir string) (*Bundle, error) {
	var b Bundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readJSON(gctx, dir, TableFile, &b.Table) })
	g.Go(func() error { return readJSON(gctx, dir, FeaturesFile, &b.Features) })
	g.Go(func() error { return readJSON(gctx, dir, MetadataFile, &b.Metadata) })
	g.Go(func() error {
		f, err := open(gctx, dir, ModelFile)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck

		m, err := classifier.Load(f)
		if err != nil {
			return eris.Wrapf(err, "artifact: read %s", ModelFile)
		}
		b.Model = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "artifact: load bundle")
	}

	if len(b.Model.Features) != len(b.Features) {
		zap.L().Warn("model and feature list disagree",
			zap.Int("model_features", len(b.Model.Features)),
			zap.Int("feature_names", len(b.Features)),
		)
	}
	return &b, nil
}

func writeJSON(ctx context.Context, dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "artifact: marshal %s", name)
	}
	return writeFile(ctx, dir, name, append(data, '\n'))
}

func writeFile(ctx context.Context, dir, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrapf(err, "artifact: write %s", name)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return eris.Wrapf(err, "artifact: create temp for %s", name)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return eris.Wrapf(err, "artifact: write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "artifact: close %s", name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		return eris.Wrapf(err, "artifact: rename %s", name)
	}
	return nil
}

func open(ctx context.Context, dir, name string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", name)
	}
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: open %s", name)
	}
	return f, nil
}

func readJSON(ctx context.Context, dir, name string, v any) error {
	f, err := open(ctx, dir, name)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return eris.Wrapf(err, "artifact: read %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "artifact: decode %s", name)
	}
	return nil
}
