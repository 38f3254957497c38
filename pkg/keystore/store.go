package keystore

import (
	"encoding/gob"
	"os"
)

func init() {
	gob.Register(Key{})
}

// Save persists a key table to path, so a multi-sector attack session can
// be resumed or exported across separate cmd/hnbf invocations.
func Save(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(t.Keys())
}

// Load reads a key table previously written by Save.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var keys []Key
	if err := gob.NewDecoder(f).Decode(&keys); err != nil {
		return nil, err
	}
	t := NewTable()
	t.keys = keys
	return t, nil
}
