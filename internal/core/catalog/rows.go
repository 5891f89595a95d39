package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is a single normalized catalog record keyed by its source column
// headers.
type Row map[string]any

// ParseRows decodes a raw catalog export into rows based on the file
// extension. JSON accepts a bare list, an object with a "products" key, or a
// single product object. CSV tolerates a UTF-8 BOM and ragged rows. Excel
// reads the first sheet.
func ParseRows(filename string, data []byte) ([]Row, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		return parseJSONRows(data)
	case ".csv":
		return parseCSVRows(data)
	case ".xlsx", ".xls":
		return parseExcelRows(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", path.Ext(filename))
	}
}

func parseJSONRows(data []byte) ([]Row, error) {
	var list []Row
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse product json: %w", err)
	}
	if raw, ok := obj["products"]; ok {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parse product json list: %w", err)
		}
		return list, nil
	}
	var single Row
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse product json object: %w", err)
	}
	return []Row{single}, nil
}

func parseCSVRows(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse product csv: %w", err)
	}
	return tableToRows(records), nil
}

func parseExcelRows(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open product workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("product workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return tableToRows(records), nil
}

func tableToRows(records [][]string) []Row {
	if len(records) < 2 {
		return nil
	}
	headers := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := Row{}
		empty := true
		for i, h := range headers {
			if i >= len(rec) {
				break
			}
			row[h] = rec[i]
			if strings.TrimSpace(rec[i]) != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

// Col returns the first non-empty value for any of keys, matched
// case-insensitively against the row's headers.
func Col(row Row, keys ...string) string {
	for _, key := range keys {
		for h, v := range row {
			if !strings.EqualFold(strings.TrimSpace(h), key) {
				continue
			}
			s := strings.TrimSpace(toString(v))
			if s != "" {
				return s
			}
		}
	}
	return ""
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		return fmt.Sprint(t)
	}
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

// Slugify lowercases s and collapses every run of non-alphanumerics to a
// single hyphen.
func Slugify(s string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// StripHTML removes markup from s and collapses whitespace.
func StripHTML(s string) string {
	return strings.Join(strings.Fields(tagPattern.ReplaceAllString(s, " ")), " ")
}
