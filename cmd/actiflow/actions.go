package main

import (
	"context"
	"fmt"
	"time"

	"github.com/actiflow/actiflow/pkg/registry"
)

// registerDemoActions installs a few handlers so documents with embedded
// action metadata can be exercised from the CLI without a host application.
func registerDemoActions(reg *registry.Registry) {
	reg.Register("Echo", func(ctx context.Context, params map[string]string) (map[string]string, error) {
		for key, value := range params {
			fmt.Printf("[action] %s=%s\n", key, value)
		}
		return nil, nil
	})

	reg.Register("SetVariable", func(ctx context.Context, params map[string]string) (map[string]string, error) {
		return params, nil
	})

	reg.Register("Timestamp", func(ctx context.Context, params map[string]string) (map[string]string, error) {
		key := params["into"]
		if key == "" {
			key = "timestamp"
		}
		return map[string]string{key: time.Now().UTC().Format(time.RFC3339)}, nil
	})
}
