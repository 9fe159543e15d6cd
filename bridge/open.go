package bridge

import (
	"fmt"

	"go.aimuz.me/foto/config"
	"go.aimuz.me/foto/fileopen"
	"go.aimuz.me/foto/iconcache"
	"go.aimuz.me/foto/imageutil"
	"go.aimuz.me/foto/platform"
)

// Open builds a Dispatcher for the current OS from cfg.
func Open(cfg *config.Config) (*Dispatcher, error) {
	keys, err := openKeySet(cfg.IconStore)
	if err != nil {
		return nil, err
	}

	images := imageutil.New(imageutil.Options{JPEGTranPath: cfg.JPEGTranPath})
	return NewDispatcher(iconcache.New(keys), fileopen.New(), platform.New(), images), nil
}

func openKeySet(store string) (iconcache.KeySet, error) {
	switch store {
	case config.IconStoreMemory, "":
		return iconcache.NewMemoryKeySet(), nil
	case config.IconStoreBadger:
		keys, err := iconcache.NewBadgerKeySet()
		if err != nil {
			return nil, fmt.Errorf("open icon key set: %w", err)
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("unknown icon store %q", store)
	}
}
