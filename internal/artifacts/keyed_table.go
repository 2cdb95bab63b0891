package artifacts

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"git.home.luguber.info/inful/ncms/internal/atomicfile"
	"git.home.luguber.info/inful/ncms/internal/foundation/errors"
)

// Row is one tab-separated record.
type Row []string

// KeyedTable is an ordered key -> row mapping backed by a TSV file.
// Loaded rows keep their file order and are replaced in place on merge;
// unseen keys are appended in merge order. Writing always rewrites the
// whole file.
type KeyedTable struct {
	keyColumn int
	header    Row
	order     []string
	rows      map[string]Row
}

// NewKeyedTable creates an empty table keyed by keyColumn. A non-nil
// header is written as the first line and skipped on load.
func NewKeyedTable(keyColumn int, header Row) *KeyedTable {
	return &KeyedTable{keyColumn: keyColumn, header: header, rows: map[string]Row{}}
}

// Load reads path into the table. A missing file yields an empty table.
func (t *KeyedTable) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.ArtifactError("failed to open table").WithCause(err).WithContext("path", path).Build()
	}
	defer func() { _ = f.Close() }()

	if err := t.Parse(f); err != nil {
		return errors.ArtifactError("failed to parse table").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}

// Parse reads TSV lines from r. Blank lines are ignored; a line too short
// to contain the key column is an error. Duplicate keys keep the first
// position and the last value.
func (t *KeyedTable) Parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	headerLine := strings.Join(t.header, "\t")
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if lineNo == 1 && t.header != nil && line == headerLine {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) <= t.keyColumn {
			return fmt.Errorf("line %d: expected at least %d columns, got %d", lineNo, t.keyColumn+1, len(fields))
		}
		t.put(fields)
	}
	return scanner.Err()
}

// Merge upserts rows, sanitizing fields so each stays on one TSV cell.
func (t *KeyedTable) Merge(rows ...Row) {
	for _, r := range rows {
		clean := make(Row, len(r))
		for i, f := range r {
			clean[i] = sanitizeField(f)
		}
		t.put(clean)
	}
}

func (t *KeyedTable) put(r Row) {
	key := r[t.keyColumn]
	if _, ok := t.rows[key]; !ok {
		t.order = append(t.order, key)
	}
	t.rows[key] = r
}

// Get returns the row stored under key.
func (t *KeyedTable) Get(key string) (Row, bool) {
	r, ok := t.rows[key]
	return r, ok
}

// Keys returns the keys in file order.
func (t *KeyedTable) Keys() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of rows.
func (t *KeyedTable) Len() int { return len(t.order) }

// Bytes renders the table, one newline-terminated line per row.
func (t *KeyedTable) Bytes() []byte {
	var buf bytes.Buffer
	if t.header != nil {
		buf.WriteString(strings.Join(t.header, "\t"))
		buf.WriteByte('\n')
	}
	for _, k := range t.order {
		buf.WriteString(strings.Join(t.rows[k], "\t"))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write atomically replaces path with the rendered table.
func (t *KeyedTable) Write(path string) error {
	if err := atomicfile.WriteFile(path, t.Bytes(), 0); err != nil {
		return errors.ArtifactError("failed to write table").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}

var fieldReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func sanitizeField(s string) string {
	return fieldReplacer.Replace(s)
}
