package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/accident-risk/internal/model"
)

// Load reads incidents from path, choosing the reader by file extension.
func Load(ctx context.Context, path string, opts XLSXOptions) ([]model.Incident, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return ReadXLSX(ctx, path, opts)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s", path)
		}
		defer f.Close() //nolint:errcheck

		return DecodeCSV(ctx, f)
	default:
		return nil, eris.Errorf("dataset: unsupported file type %q", ext)
	}
}
