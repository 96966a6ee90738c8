package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/brightdeck/citation-cli/internal/model"
	"github.com/brightdeck/citation-cli/internal/registry"
	"github.com/brightdeck/citation-cli/internal/scorer"
)

// newRegistry builds a registry from the loaded config, validating the
// scoring tables first.
func newRegistry() (*registry.Registry, error) {
	scoring := scorer.Resolve(cfg.Scoring)
	if err := scorer.ValidateConfig(scoring); err != nil {
		return nil, err
	}
	return registry.NewRegistry(scoring, zap.L()), nil
}

// openOutput returns the writer for --output, defaulting to stdout.
// The returned closer is a no-op for stdout.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create output file")
	}
	return f, f.Close, nil
}

// writeCitationJSON pretty-prints a single citation.
func writeCitationJSON(w io.Writer, c model.Citation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return eris.Wrap(err, "encode citation")
	}
	return nil
}
