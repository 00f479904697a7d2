// Copyright (c) 2026 The Crowdmill developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/crowdmill/crowdmill/store"
	"github.com/crowdmill/crowdmill/util"
	"github.com/marcopeereboom/sbox"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"
)

const (
	// storeDirname contains the directory name that the leveldb
	// database will be saved to.
	storeDirname = "store"

	// encryptionKeyFilename is the filename of the encryption key that
	// is created in the store data directory.
	encryptionKeyFilename = "leveldb-sbox.key"
)

var (
	_ store.BlobKV = (*localdb)(nil)
)

// localdb implements the store BlobKV interface using leveldb.
//
// All exported calls are locked against concurrent access. Blobs are
// encrypted with a secretbox key that is created on first startup and saved
// to the application dir.
type localdb struct {
	sync.Mutex
	db       *leveldb.DB
	key      *[32]byte
	shutdown bool
}

// encrypt encrypts and returns the provided data blob.
func (l *localdb) encrypt(data []byte) ([]byte, error) {
	return sbox.Encrypt(0, l.key, data)
}

// decrypt decrypts the provided data blob. It unpacks the sbox header and
// returns the version and unencrypted data if successful.
func (l *localdb) decrypt(data []byte) ([]byte, uint32, error) {
	return sbox.Decrypt(l.key, data)
}

// isEncrypted returns whether the provided blob has been prefixed with an
// sbox header, indicating that it is an encrypted blob.
func isEncrypted(b []byte) bool {
	return bytes.HasPrefix(b, []byte("sbox"))
}

// Put saves the provided key-value pairs to the store. This operation is
// performed atomically.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Put(blobs map[string][]byte) error {
	log.Tracef("Put: %v blobs", len(blobs))

	l.Lock()
	defer l.Unlock()
	if l.shutdown {
		return store.ErrShutdown
	}

	// Encrypt blobs and save them to a batch
	batch := new(leveldb.Batch)
	for k, v := range blobs {
		e, err := l.encrypt(v)
		if err != nil {
			return err
		}
		batch.Put([]byte(k), e)
	}

	// Write batch
	err := l.db.Write(batch, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Debugf("Saved blobs (%v) to store", len(blobs))

	return nil
}

// Del deletes the provided blobs from the store. This operation is performed
// atomically.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Del(keys []string) error {
	log.Tracef("Del: %v", keys)

	l.Lock()
	defer l.Unlock()
	if l.shutdown {
		return store.ErrShutdown
	}

	batch := new(leveldb.Batch)
	for _, v := range keys {
		batch.Delete([]byte(v))
	}

	err := l.db.Write(batch, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	log.Debugf("Deleted blobs (%v) from store", len(keys))

	return nil
}

// Get returns blobs from the store for the provided keys. An entry will not
// exist in the returned map if for any blobs that are not found. It is the
// responsibility of the caller to ensure a blob was returned for all
// provided keys.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Get(keys []string) (map[string][]byte, error) {
	log.Tracef("Get: %v", keys)

	l.Lock()
	defer l.Unlock()
	if l.shutdown {
		return nil, store.ErrShutdown
	}

	// Lookup blobs
	blobs := make(map[string][]byte, len(keys))
	for _, v := range keys {
		b, err := l.db.Get([]byte(v), nil)
		if err != nil {
			if errors.Is(err, leveldb.ErrNotFound) {
				// Blob does not exist. This is ok.
				continue
			}
			return nil, errors.WithStack(err)
		}
		blobs[v] = b
	}

	// Decrypt blobs
	for k, v := range blobs {
		if !isEncrypted(v) {
			continue
		}
		b, _, err := l.decrypt(v)
		if err != nil {
			return nil, err
		}
		blobs[k] = b
	}

	return blobs, nil
}

// Iter iterates over all blobs whose key begins with the provided prefix,
// invoking the callback for each blob.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Iter(prefix string, cb func(key string, value []byte) error) error {
	log.Tracef("Iter: %v", prefix)

	l.Lock()
	defer l.Unlock()
	if l.shutdown {
		return store.ErrShutdown
	}

	iter := l.db.NewIterator(ldbutil.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()
	for iter.Next() {
		v := make([]byte, len(iter.Value()))
		copy(v, iter.Value())
		if isEncrypted(v) {
			b, _, err := l.decrypt(v)
			if err != nil {
				return err
			}
			v = b
		}
		err := cb(string(iter.Key()), v)
		if err != nil {
			return err
		}
	}

	return errors.WithStack(iter.Error())
}

// Close shuts the store down.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Close() error {
	log.Tracef("Close")

	l.Lock()
	defer l.Unlock()

	// Prevent any more localdb calls
	l.shutdown = true

	// Zero the encryption key
	util.Zero(l.key[:])

	// Close database
	return l.db.Close()
}

// New returns a new localdb.
func New(appDir, dataDir string) (*localdb, error) {
	// Verify config options
	switch {
	case appDir == "":
		return nil, errors.Errorf("app dir not provided")
	case dataDir == "":
		return nil, errors.Errorf("data dir not provided")
	}

	// Setup leveldb data dir
	fp := filepath.Join(dataDir, storeDirname)
	err := os.MkdirAll(fp, 0700)
	if err != nil {
		return nil, err
	}

	// Open database
	db, err := leveldb.OpenFile(fp, nil)
	if err != nil {
		return nil, err
	}

	// Load encryption key
	keyFile := filepath.Join(appDir, encryptionKeyFilename)
	key, err := util.LoadEncryptionKey(log, keyFile)
	if err != nil {
		return nil, err
	}

	return &localdb{
		db:  db,
		key: key,
	}, nil
}
