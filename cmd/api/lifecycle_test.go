package main

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestClosersReleaseInReverseAndCombineErrors(t *testing.T) {
	var order []string
	var c closers
	c.add("database", func() error {
		order = append(order, "database")
		return errors.New("db busy")
	})
	c.add("redis", func() error {
		order = append(order, "redis")
		return nil
	})
	c.add("pubsub", func() error {
		order = append(order, "pubsub")
		return errors.New("pubsub stuck")
	})

	err := c.Close()
	if strings.Join(order, ",") != "pubsub,redis,database" {
		t.Fatalf("unexpected close order %v", order)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("expected 2 combined errors, got %d (%v)", got, err)
	}
	if !strings.Contains(err.Error(), "close database: db busy") {
		t.Fatalf("expected named error, got %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}
