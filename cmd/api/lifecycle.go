package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/logger"
)

type closer struct {
	name  string
	close func() error
}

// closers releases resources in reverse acquisition order.
type closers struct {
	items []closer
}

func (c *closers) add(name string, fn func() error) {
	c.items = append(c.items, closer{name: name, close: fn})
}

// Close runs every closer once and combines their errors.
func (c *closers) Close() error {
	var err error
	for i := len(c.items) - 1; i >= 0; i-- {
		item := c.items[i]
		if cerr := item.close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", item.name, cerr))
		}
	}
	c.items = nil
	return err
}

// fatal logs, releases what was acquired so far and exits. os.Exit skips
// deferred calls, hence the explicit Close.
func fatal(ctx context.Context, logg *logger.Logger, resources *closers, msg string, err error) {
	logg.Error(ctx, msg, err)
	if cerr := resources.Close(); cerr != nil {
		logg.Error(ctx, "error releasing resources", cerr)
	}
	os.Exit(1)
}
