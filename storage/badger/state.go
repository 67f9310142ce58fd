// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/storage"
)

// StateRepository implements storage.StateRepository for BadgerDB.
// The state document is one JSON value under a single key; Save holds a
// mutex so concurrent writers serialize into one critical section.
type StateRepository struct {
	backend *Backend
	mu      sync.Mutex
}

var _ storage.StateRepository = (*StateRepository)(nil)

// NewStateRepository creates a new StateRepository.
//
// Returns storage.StateRepository interface to enforce abstraction.
func NewStateRepository(backend *Backend) (storage.StateRepository, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return &StateRepository{backend: backend}, nil
}

// Close releases repository resources. The backend is owned by the
// caller and stays open.
func (r *StateRepository) Close() error {
	return nil
}

// Load reads the persisted state document.
// Returns a fresh empty state when none has been saved yet. A document
// that fails to parse surfaces ErrStateCorruption; the stored bytes are
// left untouched for operator inspection.
func (r *StateRepository) Load(ctx context.Context) (*core.IngestionState, error) {
	var state *core.IngestionState
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(stateDocKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				state = core.NewIngestionState()
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var umErr error
			state, umErr = storage.UnmarshalState(val)
			return umErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Save atomically replaces the persisted state document.
func (r *StateRepository) Save(ctx context.Context, state *core.IngestionState) error {
	data, err := storage.MarshalState(state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(stateDocKey), data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
