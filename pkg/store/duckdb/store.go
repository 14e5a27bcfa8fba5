package duckdb

import (
	_ "github.com/marcboeker/go-duckdb"

	"github.com/kisy/appmole/pkg/store/sqlstore"
)

const DefaultPath = "./appmole.duckdb"

// Store keeps checkpoints in a single-file DuckDB database, which makes the
// history easy to inspect with the duckdb CLI.
type Store struct {
	*sqlstore.Store
	path string
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s, err := sqlstore.Open("duckdb", path)
	if err != nil {
		return nil, err
	}
	return &Store{Store: s, path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}
