// Package loader turns serialized flat item collections into tree.FlatItem
// slices ready for tree.BuildTree.
//
// Every format shares one record shape: an object with an id, an optional
// label (falling back to name, title, then the id) and an optional parent
// reference (parentId, parent_id or parent; missing or null means root). All
// other keys are carried in FlatItem.Fields.
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Format names a serialization format.
type Format string

const (
	FormatJSONL  Format = "jsonl"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatSQLite Format = "sqlite"
)

var (
	// ErrNoItems is returned when a document holds neither a list of items
	// nor an "items" key.
	ErrNoItems = errors.New("no item list found")
	// ErrUnknownFormat is returned for paths whose extension maps to no format.
	ErrUnknownFormat = errors.New("unknown source format")
)

// labelKeys are tried in order for the display label.
var labelKeys = []string{"label", "name", "title"}

// parentKeys are tried in order for the parent reference.
var parentKeys = []string{"parentId", "parent_id", "parent"}

// DefaultMaxBufferSize is the default buffer size for JSONL lines (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures parsing.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize sets the maximum JSONL line size (in bytes) to read at once.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize (10MB).
	BufferSize int
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// LoadFile reads items from a JSONL, JSON, YAML or TOML file, picking the
// parser from the extension. SQLite databases are read by the datasource
// package.
func LoadFile(path string, opts ParseOptions) ([]tree.FlatItem, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if format == FormatSQLite {
		return nil, fmt.Errorf("%s: sqlite sources are read through the datasource package", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	start := time.Now()
	items, err := Parse(file, format, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	debug.LogTiming("load "+path, time.Since(start))
	debug.Log("%s: %d items (%s)", path, len(items), format)
	return items, nil
}

// Parse reads items in the given format.
func Parse(r io.Reader, format Format, opts ParseOptions) ([]tree.FlatItem, error) {
	switch format {
	case FormatJSONL:
		return ParseJSONL(r, opts)
	case FormatJSON:
		return ParseJSON(r, opts)
	case FormatYAML:
		return ParseYAML(r, opts)
	case FormatTOML:
		return ParseTOML(r, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ParseJSONL parses one JSON object per line. Handles UTF-8 BOM stripping and
// large lines; malformed lines and lines without an id are skipped with a
// warning.
func ParseJSONL(r io.Reader, opts ParseOptions) ([]tree.FlatItem, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)
	warn := opts.warn()

	items := []tree.FlatItem{}
	lineNum := 0
	for {
		lineNum++
		// ReadLine returns a single line, not including the end-of-line bytes.
		// If the line was too long for the buffer then isPrefix is set and the
		// beginning of the line is returned.
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading items stream at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		item, err := ItemFromFields(fields)
		if err != nil {
			warn(fmt.Sprintf("skipping invalid item on line %d: %v", lineNum, err))
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// ParseJSON parses a JSON document holding either a top-level array of items
// or an object with an "items" array.
func ParseJSON(r io.Reader, opts ParseOptions) ([]tree.FlatItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}
	data = stripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return []tree.FlatItem{}, nil
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return itemsFromDocument(doc, opts.warn())
}

// ParseYAML parses a YAML document holding either a top-level sequence of
// items or a mapping with an "items" sequence.
func ParseYAML(r io.Reader, opts ParseOptions) ([]tree.FlatItem, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []tree.FlatItem{}, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return itemsFromDocument(doc, opts.warn())
}

// ParseTOML parses a TOML document with an [[items]] array of tables.
func ParseTOML(r io.Reader, opts ParseOptions) ([]tree.FlatItem, error) {
	var doc map[string]any
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	if len(doc) == 0 {
		return []tree.FlatItem{}, nil
	}
	return itemsFromDocument(doc, opts.warn())
}

func itemsFromDocument(doc any, warn func(string)) ([]tree.FlatItem, error) {
	var records []any
	switch v := doc.(type) {
	case nil:
		return []tree.FlatItem{}, nil
	case []any:
		records = v
	case []map[string]any:
		records = make([]any, len(v))
		for i, m := range v {
			records[i] = m
		}
	case map[string]any:
		list, ok := v["items"]
		if !ok {
			return nil, ErrNoItems
		}
		return itemsFromDocument(list, warn)
	default:
		return nil, fmt.Errorf("%w: top level is %T", ErrNoItems, doc)
	}

	items := make([]tree.FlatItem, 0, len(records))
	for i, rec := range records {
		fields, ok := rec.(map[string]any)
		if !ok {
			warn(fmt.Sprintf("skipping item %d: expected an object, got %T", i+1, rec))
			continue
		}
		item, err := ItemFromFields(fields)
		if err != nil {
			warn(fmt.Sprintf("skipping item %d: %v", i+1, err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// ItemFromFields builds a FlatItem from a decoded record. The id may be a
// string or a number. A missing, null or empty parent marks a root.
func ItemFromFields(fields map[string]any) (tree.FlatItem, error) {
	rawID, ok := fields["id"]
	if !ok || rawID == nil {
		return tree.FlatItem{}, errors.New("missing id")
	}
	id, ok := scalarString(rawID)
	if !ok || strings.TrimSpace(id) == "" {
		return tree.FlatItem{}, fmt.Errorf("invalid id %v", rawID)
	}

	item := tree.FlatItem{ID: id}
	used := map[string]bool{"id": true}

	for _, key := range labelKeys {
		if v, ok := fields[key]; ok {
			if s, ok := scalarString(v); ok && s != "" {
				item.Label = s
				used[key] = true
				break
			}
		}
	}
	if item.Label == "" {
		item.Label = id
	}

	for _, key := range parentKeys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		used[key] = true
		if v == nil {
			break
		}
		parent, ok := scalarString(v)
		if !ok {
			return tree.FlatItem{}, fmt.Errorf("invalid %s %v", key, v)
		}
		item.ParentID = parent
		break
	}

	for k, v := range fields {
		if used[k] {
			continue
		}
		if item.Fields == nil {
			item.Fields = make(map[string]any, len(fields))
		}
		item.Fields[k] = v
	}
	return item, nil
}

// scalarString renders the scalar kinds the decoders produce for ids.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	}
	return "", false
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
