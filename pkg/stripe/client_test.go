package stripe

import (
	"context"
	"testing"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
)

func TestNewClientValidatesKeyForEnvironment(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.StripeConfig
		wantErr bool
		live    bool
	}{
		{name: "missing key", cfg: config.StripeConfig{Env: "test"}, wantErr: true},
		{name: "unknown env", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "staging"}, wantErr: true},
		{name: "live key in test", cfg: config.StripeConfig{APIKey: "sk_live_123", Env: "test"}, wantErr: true},
		{name: "test key in live", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "live"}, wantErr: true},
		{name: "test default", cfg: config.StripeConfig{APIKey: "sk_test_123"}},
		{name: "restricted live", cfg: config.StripeConfig{APIKey: "rk_live_123", Env: "LIVE"}, live: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tc.cfg, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.Live() != tc.live {
				t.Fatalf("expected live=%v for env %q", tc.live, client.Environment())
			}
		})
	}
}
