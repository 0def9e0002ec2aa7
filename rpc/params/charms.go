// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

// CharmURL identifies a charm.
type CharmURL struct {
	URL string `json:"url"`
}

// Charm holds the metadata and config of a charm, as returned by
// Charms.CharmInfo.
type Charm struct {
	Revision int                    `json:"revision"`
	URL      string                 `json:"url"`
	Config   map[string]CharmOption `json:"config,omitempty"`
	Meta     *CharmMeta             `json:"meta,omitempty"`
}

// CharmOption describes one config option of a charm.
type CharmOption struct {
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// CharmMeta is the descriptive part of charm metadata.
type CharmMeta struct {
	Name        string   `json:"name"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Subordinate bool     `json:"subordinate"`
	Categories  []string `json:"categories,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}
