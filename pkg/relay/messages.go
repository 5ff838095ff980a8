// Copyright 2024-2026 Aiku AI

package relay

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultCatalog []byte

// Messages is the catalog of user-visible reply strings. Ignore doubles
// as the neutral reply for events the relay has nothing to do with and
// for gated commands invoked by non-subscribers, so callers cannot probe
// membership from the outside.
type Messages struct {
	AlreadySubscriber string `yaml:"already_subscriber"`
	Subscribed        string `yaml:"subscribed"`
	NotSubscriber     string `yaml:"not_subscriber"`
	Unsubscribed      string `yaml:"unsubscribed"`
	AlreadySender     string `yaml:"already_sender"`
	SenderAdded       string `yaml:"sender_added"`
	NotSender         string `yaml:"not_sender"`
	SenderRemoved     string `yaml:"sender_removed"`
	Ignore            string `yaml:"ignore"`
	Forwarded         string `yaml:"forwarded"`
	NoSubscribers     string `yaml:"no_subscribers"`
	NoSenders         string `yaml:"no_senders"`
}

// LoadMessages returns the embedded default catalog, overlaid with the
// YAML file at path when path is non-empty. The override file only needs
// to name the keys it replaces.
func LoadMessages(path string) (*Messages, error) {
	var m Messages
	if err := yaml.Unmarshal(defaultCatalog, &m); err != nil {
		return nil, fmt.Errorf("parse embedded message catalog: %w", err)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read message catalog: %w", err)
		}
		if err := yaml.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("parse message catalog %s: %w", path, err)
		}
	}
	return &m, nil
}
