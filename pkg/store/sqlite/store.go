package sqlite

import (
	_ "modernc.org/sqlite"

	"github.com/kisy/appmole/pkg/store/sqlstore"
)

const DefaultPath = "./appmole.sqlite"

type Store struct {
	*sqlstore.Store
	path string
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s, err := sqlstore.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Store{Store: s, path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}
