// Package compilelog records, per compiled template, a fingerprint of its
// inputs and the files it imported, so unchanged templates can be skipped.
package compilelog

import (
	"errors"
	"fmt"
	"os"

	"github.com/segmentio/fasthash/fnv1a"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const currentVersion = 1

var schema = []string{
	"CREATE TABLE IF NOT EXISTS swig_meta (`key` TEXT PRIMARY KEY, `value` INTEGER);",
	"CREATE TABLE IF NOT EXISTS swig_templates " +
		"(`path` TEXT PRIMARY KEY, `fingerprint` INTEGER, `output_hash` TEXT);",
	"CREATE TABLE IF NOT EXISTS swig_deps " +
		"(`path` TEXT, `seq` INTEGER, `dep` TEXT, PRIMARY KEY (`path`, `seq`));",
}

// Entry is the record of one compiled template.
type Entry struct {
	Path        string
	Fingerprint uint64
	OutputHash  string

	// Deps are the imported files, in the order they were read.
	Deps []string
}

// Log is a compile log backed by an sqlite database.
type Log struct {
	conn *sqlite.Conn

	stmtUpsert     *sqlite.Stmt
	stmtDeleteDeps *sqlite.Stmt
	stmtInsertDep  *sqlite.Stmt
	stmtLookup     *sqlite.Stmt
	stmtDeps       *sqlite.Stmt
}

// Open opens the log at path, creating it when missing.
func Open(path string) (*Log, error) {
	needCreate := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		needCreate = true
	} else if err != nil {
		return nil, err
	}

	flags := sqlite.OpenReadWrite
	if needCreate {
		flags |= sqlite.OpenCreate
	}
	conn, err := sqlite.OpenConn(path, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to open compile log %s: %w", path, err)
	}

	l := &Log{conn: conn}
	if err := l.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize compile log %s: %w", path, err)
	}
	return l, nil
}

func (l *Log) init() error {
	for _, q := range schema {
		if err := sqlitex.ExecuteTransient(l.conn, q, nil); err != nil {
			return err
		}
	}

	version := int64(-1)
	err := sqlitex.ExecuteTransient(l.conn, "SELECT `value` FROM swig_meta WHERE `key` = 'version';",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				version = stmt.ColumnInt64(0)
				return nil
			},
		})
	if err != nil {
		return err
	}
	switch version {
	case currentVersion:
	case -1:
		err = sqlitex.ExecuteTransient(l.conn,
			"INSERT INTO swig_meta (`key`, `value`) VALUES ('version', ?);",
			&sqlitex.ExecOptions{Args: []interface{}{currentVersion}})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported compile log version %d", version)
	}

	prepare := []struct {
		stmt  **sqlite.Stmt
		query string
	}{
		{&l.stmtUpsert, "INSERT INTO swig_templates (`path`, `fingerprint`, `output_hash`) " +
			"VALUES ($path, $fingerprint, $output_hash) ON CONFLICT(path) " +
			"DO UPDATE SET `fingerprint` = $fingerprint, `output_hash` = $output_hash;"},
		{&l.stmtDeleteDeps, "DELETE FROM swig_deps WHERE `path` = $path;"},
		{&l.stmtInsertDep, "INSERT INTO swig_deps (`path`, `seq`, `dep`) VALUES ($path, $seq, $dep);"},
		{&l.stmtLookup, "SELECT `fingerprint`, `output_hash` FROM swig_templates WHERE `path` = $path;"},
		{&l.stmtDeps, "SELECT `dep` FROM swig_deps WHERE `path` = $path ORDER BY `seq`;"},
	}
	for _, p := range prepare {
		stmt, err := l.conn.Prepare(p.query)
		if err != nil {
			return err
		}
		*p.stmt = stmt
	}
	return nil
}

// Record stores e, replacing any previous entry for the same path.
func (l *Log) Record(e *Entry) (err error) {
	defer sqlitex.Save(l.conn)(&err)

	if err := l.exec(l.stmtUpsert, func(s *sqlite.Stmt) {
		s.SetText("$path", e.Path)
		s.SetInt64("$fingerprint", int64(e.Fingerprint))
		s.SetText("$output_hash", e.OutputHash)
	}); err != nil {
		return err
	}
	if err := l.exec(l.stmtDeleteDeps, func(s *sqlite.Stmt) {
		s.SetText("$path", e.Path)
	}); err != nil {
		return err
	}
	for i, dep := range e.Deps {
		if err := l.exec(l.stmtInsertDep, func(s *sqlite.Stmt) {
			s.SetText("$path", e.Path)
			s.SetInt64("$seq", int64(i))
			s.SetText("$dep", dep)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the entry for path, or nil when there is none.
func (l *Log) Lookup(path string) (*Entry, error) {
	s := l.stmtLookup
	if err := s.Reset(); err != nil {
		return nil, err
	}
	s.SetText("$path", path)
	hasRow, err := s.Step()
	if err != nil {
		return nil, err
	}
	if !hasRow {
		return nil, nil
	}
	e := &Entry{
		Path:        path,
		Fingerprint: uint64(s.ColumnInt64(0)),
		OutputHash:  s.ColumnText(1),
	}
	if err := s.Reset(); err != nil {
		return nil, err
	}

	d := l.stmtDeps
	if err := d.Reset(); err != nil {
		return nil, err
	}
	d.SetText("$path", path)
	for {
		hasRow, err := d.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}
		e.Deps = append(e.Deps, d.ColumnText(0))
	}
	return e, nil
}

// Close closes the database. Prepared statements are finalized with it.
func (l *Log) Close() error {
	return l.conn.Close()
}

func (l *Log) exec(s *sqlite.Stmt, bind func(*sqlite.Stmt)) error {
	if err := s.Reset(); err != nil {
		return err
	}
	if err := s.ClearBindings(); err != nil {
		return err
	}
	bind(s)
	_, err := s.Step()
	return err
}

// Fingerprint folds the content hashes of a template and its dependencies
// into one value. Order matters.
func Fingerprint(hashes ...[32]byte) uint64 {
	h := fnv1a.Init64
	for _, sum := range hashes {
		h = fnv1a.AddBytes64(h, sum[:])
	}
	return h
}
