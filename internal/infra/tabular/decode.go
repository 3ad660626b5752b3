package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/bryanwahyu/feedback-lens/internal/domain/feedback"
)

// Decoder reads CSV and XLSX survey exports. The zero value is ready to use.
type Decoder struct{}

var _ feedback.TableDecoder = Decoder{}

func (Decoder) Decode(filename string, data []byte) (feedback.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		t, _, err := DecodeCSV(data)
		return t, err
	case ".xlsx":
		return DecodeXLSX(data)
	default:
		return feedback.Table{}, fmt.Errorf("%w: %q", feedback.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

type textDecoder struct {
	name   string
	decode func([]byte) (string, bool)
}

// Tried in order; CP932 accepts most byte sequences so it goes last.
var textDecoders = []textDecoder{
	{"utf-8-sig", decodeUTF8BOM},
	{"utf-8", decodeUTF8},
	// japanese.ShiftJIS is the Windows-31J table, so it covers shift_jis too.
	{"cp932", decodeShiftJIS},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeUTF8BOM(b []byte) (string, bool) {
	if !bytes.HasPrefix(b, utf8BOM) {
		return "", false
	}
	return decodeUTF8(b[len(utf8BOM):])
}

func decodeUTF8(b []byte) (string, bool) {
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func decodeShiftJIS(b []byte) (string, bool) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	if err != nil {
		return "", false
	}
	// invalid sequences come back as U+FFFD instead of an error
	if bytes.ContainsRune(out, utf8.RuneError) && !bytes.ContainsRune(b, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// DecodeCSV decodes and parses a CSV file. The first record is the header row.
func DecodeCSV(data []byte) (feedback.Table, string, error) {
	var errs []error
	for _, d := range textDecoders {
		text, ok := d.decode(data)
		if !ok {
			continue
		}
		t, err := parseCSV(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		return t, d.name, nil
	}
	if len(errs) == 0 {
		return feedback.Table{}, "", fmt.Errorf("%w: no supported text encoding (utf-8, cp932, shift_jis)", feedback.ErrDecodeFailure)
	}
	return feedback.Table{}, "", fmt.Errorf("%w: %w", feedback.ErrDecodeFailure, errors.Join(errs...))
}

func parseCSV(text string) (feedback.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return feedback.Table{}, err
	}
	return fromRecords(records), nil
}

// DecodeXLSX reads the first sheet of a workbook.
func DecodeXLSX(data []byte) (feedback.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return feedback.Table{}, fmt.Errorf("%w: %w", feedback.ErrDecodeFailure, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return feedback.Table{}, fmt.Errorf("%w: workbook has no sheets", feedback.ErrDecodeFailure)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return feedback.Table{}, fmt.Errorf("%w: %w", feedback.ErrDecodeFailure, err)
	}
	return fromRecords(rows), nil
}

func fromRecords(records [][]string) feedback.Table {
	if len(records) == 0 {
		return feedback.Table{Headers: []string{}, Rows: [][]string{}}
	}
	return feedback.Table{Headers: records[0], Rows: records[1:]}
}
