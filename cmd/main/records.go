package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/CTAG07/sponsorsync/pkg/source"
	"github.com/CTAG07/sponsorsync/pkg/sponsors"
	"github.com/CTAG07/sponsorsync/pkg/store"
)

// openStore opens the sponsor database and prepares its statements. The
// returned closer releases both.
func openStore(path string) (*store.Store, func(), error) {
	db, err := initDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sponsor database: %w", err)
	}
	if err = store.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to setup sponsor schema: %w", err)
	}
	s, err := store.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create sponsor store: %w", err)
	}
	closer := func() {
		s.Close()
		_ = db.Close()
	}
	return s, closer, nil
}

// loadRecords reads sponsor records from the configured source.
func (a *app) loadRecords(ctx context.Context) ([]sponsors.Record, error) {
	src := a.config.SourceConfig()
	switch {
	case src.DatabasePath != "":
		s, closeStore, err := openStore(src.DatabasePath)
		if err != nil {
			return nil, err
		}
		defer closeStore()
		records, err := s.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list sponsors: %w", err)
		}
		a.logger.Debug("Loaded sponsors from database", "path", src.DatabasePath, "count", len(records))
		return records, nil
	case src.SponsorsFile != "":
		records, err := source.LoadFile(src.SponsorsFile)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("Loaded sponsors from file", "path", src.SponsorsFile, "count", len(records))
		return records, nil
	}
	return nil, errors.New("no sponsor source configured: set source_config.sponsors_file or source_config.database_path")
}

