package filereader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// FileReader reads candidate URLs from the first column of a CSV file.
// The first row is a header and is skipped.
type FileReader struct {
	csvPath string
}

// New creates a new FileReader
func New(csvPath string) *FileReader {
	return &FileReader{csvPath: csvPath}
}

// ReadURLs sends every non-blank URL to output and closes it when done.
func (fr *FileReader) ReadURLs(ctx context.Context, output chan<- string, logger *zap.Logger) error {
	defer close(output)

	file, err := os.Open(fr.csvPath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	isHeader := true
	urlCount := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if isHeader {
			isHeader = false
			continue
		}
		if len(row) == 0 {
			continue
		}

		url := strings.TrimSpace(row[0])
		if url == "" {
			continue
		}

		select {
		case <-ctx.Done():
			logger.Warn("file reading interrupted", zap.Error(ctx.Err()))
			return ctx.Err()
		case output <- url:
			logger.Debug("read URL", zap.String("url", url))
			urlCount++
		}
	}

	logger.Info("finished reading URLs", zap.Int("total_urls", urlCount))
	return nil
}
