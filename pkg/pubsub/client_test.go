package pubsub

import (
	"testing"

	"github.com/sathwikmerugu45/E-Commerce-Website/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "shop-prod"}

	cases := map[string]string{
		"checkout-events":                       "projects/shop-prod/topics/checkout-events",
		" checkout-events ":                     "projects/shop-prod/topics/checkout-events",
		"projects/other/topics/checkout-events": "projects/other/topics/checkout-events",
		"":                                      "",
	}
	for in, want := range cases {
		if got := c.topicResourceName(in); got != want {
			t.Fatalf("topicResourceName(%q) = %q, want %q", in, got, want)
		}
	}

	if got := (&Client{}).topicResourceName("t"); got != "" {
		t.Fatalf("expected empty name without project, got %q", got)
	}
}

func TestTopicNamesSkipsBlank(t *testing.T) {
	if got := topicNames(config.PubSubConfig{CheckoutTopic: "  "}); len(got) != 0 {
		t.Fatalf("expected no topics, got %v", got)
	}
	if got := topicNames(config.PubSubConfig{CheckoutTopic: "checkout"}); len(got) != 1 || got[0] != "checkout" {
		t.Fatalf("unexpected topics %v", got)
	}
}

func TestClientOptions(t *testing.T) {
	if got := clientOptions(config.PubSubConfig{}); len(got) != 0 {
		t.Fatalf("expected default credentials, got %d options", len(got))
	}
	cfg := config.PubSubConfig{CredentialsJSON: `{"type":"service_account"}`, CredentialsFile: "/secrets/key.json"}
	if got := clientOptions(cfg); len(got) != 1 {
		t.Fatalf("expected a single credentials option, got %d", len(got))
	}
	if got := clientOptions(config.PubSubConfig{CredentialsFile: "/secrets/key.json"}); len(got) != 1 {
		t.Fatalf("expected file credentials option, got %d", len(got))
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("x") != nil {
		t.Fatal("nil client should not return a publisher")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
