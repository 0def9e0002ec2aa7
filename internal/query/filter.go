// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package query derives read only views over the store: filtering,
// grouping by status, cloud and owner, and resolving controller names
// and access levels.
package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/juju/collections/set"
	"github.com/juju/loggo"

	"github.com/juju/juju-dashboard/internal/store"
)

var logger = loggo.GetLogger("dashboard.query")

// Filters selects models. Every populated field must match; within a
// field any value may match. Cloud, Credential, Region and Owner match
// exactly; Custom terms match case insensitively anywhere in the model
// name, cloud, credential, region or owner.
type Filters struct {
	Cloud      []string `json:"cloud,omitempty"`
	Credential []string `json:"credential,omitempty"`
	Region     []string `json:"region,omitempty"`
	Owner      []string `json:"owner,omitempty"`
	Custom     []string `json:"custom,omitempty"`
}

// IsEmpty reports whether the filters select every model.
func (f Filters) IsEmpty() bool {
	return len(f.Cloud) == 0 &&
		len(f.Credential) == 0 &&
		len(f.Region) == 0 &&
		len(f.Owner) == 0 &&
		len(f.Custom) == 0
}

// Key returns a canonical string for the filters, equal for filters that
// select the same models.
func (f Filters) Key() string {
	return fmt.Sprintf("cloud=%s;credential=%s;region=%s;owner=%s;custom=%s",
		canonical(f.Cloud),
		canonical(f.Credential),
		canonical(f.Region),
		canonical(f.Owner),
		canonical(f.Custom),
	)
}

// canonical encodes the distinct values in sorted order. The values are
// JSON encoded so separators inside a value cannot collide.
func canonical(values []string) string {
	// A string slice always encodes.
	out, _ := json.Marshal(set.NewStrings(values...).SortedValues())
	return string(out)
}

// Attributes are the model properties filters and groupings work on.
type Attributes struct {
	Name       string
	Cloud      string
	Credential string
	Region     string
	Owner      string
}

// ModelAttributes extracts the filterable attributes of a model. The
// status snapshot is preferred, the model info fills the gaps.
func ModelAttributes(model store.ModelData) Attributes {
	attrs := Attributes{
		Name:   model.Model.Name,
		Cloud:  CloudName(model.Model.CloudTag),
		Region: model.Model.CloudRegion,
	}
	if info := model.Info; info != nil {
		if attrs.Name == "" {
			attrs.Name = info.Name
		}
		if attrs.Cloud == "" {
			attrs.Cloud = CloudName(info.CloudTag)
		}
		if attrs.Region == "" {
			attrs.Region = info.CloudRegion
		}
		attrs.Credential = CredentialName(info.CloudCredentialTag)
		attrs.Owner = OwnerName(info.OwnerTag)
	}
	return attrs
}

// Matches reports whether the model passes the filters. A model missing
// a filtered attribute does not pass. Credential and owner only come
// from the model info, so a model without info is not filtered on them.
func (f Filters) Matches(model store.ModelData) bool {
	attrs := ModelAttributes(model)
	if !matchesExactly(f.Cloud, attrs.Cloud) ||
		!matchesExactly(f.Region, attrs.Region) {
		return false
	}
	if model.Info != nil &&
		(!matchesExactly(f.Credential, attrs.Credential) ||
			!matchesExactly(f.Owner, attrs.Owner)) {
		return false
	}
	if len(f.Custom) == 0 {
		return true
	}
	candidates := []string{attrs.Name, attrs.Cloud, attrs.Credential, attrs.Region, attrs.Owner}
	for _, term := range f.Custom {
		term = strings.ToLower(term)
		for _, candidate := range candidates {
			if candidate != "" && strings.Contains(strings.ToLower(candidate), term) {
				return true
			}
		}
	}
	return false
}

func matchesExactly(values []string, attr string) bool {
	if len(values) == 0 {
		return true
	}
	if attr == "" {
		return false
	}
	for _, v := range values {
		if v == attr {
			return true
		}
	}
	return false
}

// Filter returns the models that pass the filters, keyed by UUID.
func Filter(models map[string]store.ModelData, filters Filters) map[string]store.ModelData {
	result := make(map[string]store.ModelData)
	for uuid, model := range models {
		if filters.Matches(model) {
			result[uuid] = model
		}
	}
	logger.Tracef("filter %s kept %d of %d models", filters.Key(), len(result), len(models))
	return result
}

// sortedUUIDs returns the model UUIDs in order so that grouped output is
// stable.
func sortedUUIDs(models map[string]store.ModelData) []string {
	uuids := make([]string, 0, len(models))
	for uuid := range models {
		uuids = append(uuids, uuid)
	}
	sort.Strings(uuids)
	return uuids
}
