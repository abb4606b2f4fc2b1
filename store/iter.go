package store

import (
	"github.com/dgraph-io/badger/v4"
)

// forEach 遍历带有前缀的所有记录，传给 fn 的键不含前缀。
func (s *Store) forEach(prefix byte, fn func(key, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefix}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)[1:]
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
