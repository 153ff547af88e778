package writer

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/rxtech-lab/argo-structure/internal/types"
	"github.com/rxtech-lab/argo-structure/pkg/errors"
	"github.com/rxtech-lab/argo-structure/pkg/marketdata/provider"
)

// CSVWriter buffers bars and writes them in the layout read by provider.CSVProvider.
type CSVWriter struct {
	bars        []types.Bar
	initialized bool
	outputPath  string
}

func NewCSVWriter(outputPath string) MarketDataWriter {
	return &CSVWriter{outputPath: outputPath}
}

func (w *CSVWriter) Initialize() error {
	w.bars = w.bars[:0]
	w.initialized = true

	return nil
}

func (w *CSVWriter) Write(bar types.Bar) error {
	if !w.initialized {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	w.bars = append(w.bars, bar)

	return nil
}

func (w *CSVWriter) Finalize() (string, error) {
	if !w.initialized {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	file, err := os.Create(w.outputPath)
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create %s", w.outputPath)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(provider.BarsToRows(w.bars), file); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to write %s", w.outputPath)
	}

	return w.outputPath, nil
}

func (w *CSVWriter) Close() error {
	w.bars = nil
	w.initialized = false

	return nil
}

func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
