// Package report writes bundle analysis results to files or streams.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/aluiziolira/bookbundle/models"
)

// Writer persists analysis results.
type Writer interface {
	Write(result *models.BundleResult) error
	Close() error
	Validate() error
}

// NewWriter builds a writer for format ("json", "csv" or "dual"). An empty
// filename or "-" writes to stdout; dual output requires a filename.
func NewWriter(format, filename string) (Writer, error) {
	toStdout := filename == "" || filename == "-"
	switch strings.ToLower(format) {
	case "json":
		if toStdout {
			return NewJSONStream(os.Stdout), nil
		}
		return NewJSONWriter(filename)
	case "csv":
		if toStdout {
			return NewCSVStream(os.Stdout)
		}
		return NewCSVWriter(filename)
	case "dual":
		if toStdout {
			return nil, fmt.Errorf("dual format requires an output file")
		}
		jsonFilename := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".json"
		csvFilename := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".csv"
		return NewDualWriter(csvFilename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

var csvHeader = []string{
	"analysis_id", "rank", "seller_code", "seller_name", "shop_url",
	"bundle_book_count", "bundle_total_price",
	"item_id", "canonical_id", "title", "quality", "price", "product_url",
}

// CSVWriter writes one row per verified listing of every ranked seller.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates filename and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	cw, err := newCSVWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	cw.file = f
	return cw, nil
}

// NewCSVStream writes CSV rows to w, which the caller keeps ownership of.
func NewCSVStream(w io.Writer) (*CSVWriter, error) {
	return newCSVWriter(w)
}

func newCSVWriter(w io.Writer) (*CSVWriter, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv header: %w", err)
	}
	return &CSVWriter{writer: writer}, nil
}

// Write appends the rows of result.
func (cw *CSVWriter) Write(result *models.BundleResult) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for rank, seller := range result.Sellers {
		for _, listing := range seller.Books {
			record := []string{
				result.AnalysisID,
				strconv.Itoa(rank + 1),
				seller.SellerCode,
				seller.SellerName,
				seller.ShopURL,
				strconv.Itoa(seller.TotalBookCount),
				strconv.Itoa(seller.TotalPrice),
				strconv.FormatInt(listing.ItemID, 10),
				strconv.FormatInt(listing.CanonicalID, 10),
				listing.Title,
				listing.Quality.String(),
				strconv.Itoa(listing.Price),
				listing.ProductURL,
			}
			if err := cw.writer.Write(record); err != nil {
				return fmt.Errorf("write csv record: %w", err)
			}
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle, if any.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	if cw.file == nil {
		return nil
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	if cw.file == nil {
		return nil
	}
	info, err := cw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("csv file is empty")
	}
	return nil
}

// JSONWriter writes each result as an indented JSON document.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates filename.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	jw := NewJSONStream(f)
	jw.file = f
	return jw, nil
}

// NewJSONStream writes JSON to w, which the caller keeps ownership of.
func NewJSONStream(w io.Writer) *JSONWriter {
	buffer := bufio.NewWriter(w)
	encoder := json.NewEncoder(buffer)
	encoder.SetIndent("", "  ")
	return &JSONWriter{
		writer:  buffer,
		encoder: encoder,
	}
}

// Write encodes result.
func (jw *JSONWriter) Write(result *models.BundleResult) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.encoder.Encode(result); err != nil {
		return fmt.Errorf("encode json result: %w", err)
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers and closes the underlying file, if any.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	if jw.file == nil {
		return nil
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	if jw.file == nil {
		return nil
	}
	info, err := jw.file.Stat()
	if err != nil {
		return fmt.Errorf("stat json file: %w", err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("json file is empty")
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
