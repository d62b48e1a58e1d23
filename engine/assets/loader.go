package assets

import (
	"context"

	"github.com/spaghettifunk/smok/engine/core"
	"golang.org/x/sync/errgroup"
)

/**
 * @brief Loads the settings of every record still in StateRegistered. Records
 * are independent once registered, so up to the configured number of workers
 * read files at the same time. The first failure cancels the remaining loads
 * and is returned; records loaded before it stay loaded.
 */
func (m *Manager) LoadAll(ctx context.Context) error {
	var pending []Asset
	for _, a := range m.Assets() {
		if a.State() == StateRegistered {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.loadWorkers)
	for _, a := range pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return loadSettings(a)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	core.LogInfo("Loaded settings for %d asset(s).", len(pending))
	return nil
}
