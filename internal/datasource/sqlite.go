package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/loader"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// DefaultTable is read when a source names no table.
const DefaultTable = "items"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteReader provides read access to a table of flat items:
//
//	CREATE TABLE items (id TEXT PRIMARY KEY, label TEXT, parent_id TEXT, data TEXT);
//
// label, parent_id and data are optional columns. data holds a JSON object
// whose keys become FlatItem fields.
type SQLiteReader struct {
	db    *sql.DB
	path  string
	table string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Format != loader.FormatSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Format)
	}
	table := source.Table
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	// Open in read-only mode with various pragmas for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -16000", // 16MB cache
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("%s: %s failed: %v", source.Path, pragma, err)
		}
	}

	return &SQLiteReader{
		db:    db,
		path:  source.Path,
		table: table,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// columns reports which of the optional columns the table has.
func (r *SQLiteReader) columns(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", r.table))
	if err != nil {
		return nil, fmt.Errorf("reading schema of %s: %w", r.table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("reading schema of %s: %w", r.table, err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading schema of %s: %w", r.table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q not found in %s", r.table, r.path)
	}
	if !cols["id"] {
		return nil, fmt.Errorf("table %q has no id column", r.table)
	}
	return cols, nil
}

// LoadItems reads every row of the table in rowid order. Rows with a NULL or
// empty id are skipped; malformed data blobs are reported through warn and
// otherwise ignored.
func (r *SQLiteReader) LoadItems(ctx context.Context, warn func(string)) ([]tree.FlatItem, error) {
	if warn == nil {
		warn = func(string) {}
	}
	cols, err := r.columns(ctx)
	if err != nil {
		return nil, err
	}

	optional := func(name string) string {
		if cols[name] {
			return name
		}
		return "NULL"
	}
	query := fmt.Sprintf("SELECT CAST(id AS TEXT), CAST(%s AS TEXT), CAST(%s AS TEXT), %s FROM %s ORDER BY rowid",
		optional("label"), optional("parent_id"), optional("data"), r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	items := []tree.FlatItem{}
	for rows.Next() {
		var id, label, parentID, data sql.NullString
		if err := rows.Scan(&id, &label, &parentID, &data); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.table, err)
		}
		if !id.Valid || id.String == "" {
			warn(fmt.Sprintf("%s: skipping row without id", r.path))
			continue
		}

		item := tree.FlatItem{ID: id.String, Label: id.String}
		if label.Valid && label.String != "" {
			item.Label = label.String
		}
		if parentID.Valid {
			item.ParentID = parentID.String
		}
		if data.Valid && data.String != "" {
			var fields map[string]any
			if err := json.Unmarshal([]byte(data.String), &fields); err != nil {
				warn(fmt.Sprintf("%s: item %s: ignoring malformed data: %v", r.path, item.ID, err))
			} else if len(fields) > 0 {
				item.Fields = fields
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.table, err)
	}

	return items, nil
}

// CountItems returns the number of rows in the table
func (r *SQLiteReader) CountItems(ctx context.Context) (int, error) {
	if _, err := r.columns(ctx); err != nil {
		return 0, err
	}
	var count int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
