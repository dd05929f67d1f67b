package main

import (
	"fmt"

	"github.com/dhamidi/cedit/persist"
	"github.com/dhamidi/cedit/session"
)

// openedStore is a session store restored from the configured storage.
type openedStore struct {
	store   *session.Store
	adapter *persist.Adapter
	kv      persist.KV
	loaded  persist.LoadResult
}

func (o *openedStore) Close() error {
	return o.kv.Close()
}

// openStore opens the configured backend, restores the saved session and
// returns a store that saves every change back.
func openStore() (*openedStore, error) {
	kv, err := persist.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	codec, err := persist.CodecByName(cfg.Storage.Codec)
	if err != nil {
		kv.Close()
		return nil, err
	}
	adapter := persist.NewAdapter(kv, persist.WithKey(cfg.Storage.Key), persist.WithCodec(codec))

	loaded := adapter.Load()
	store := session.NewStore(session.WithSnapshotter(adapter))
	if err := store.Restore(loaded.Session); err != nil {
		kv.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return &openedStore{store: store, adapter: adapter, kv: kv, loaded: loaded}, nil
}
