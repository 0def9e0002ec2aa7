// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"time"
)

// ListSecretsArgs holds the arguments of a Secrets.ListSecrets call.
type ListSecretsArgs struct {
	ShowSecrets bool          `json:"show-secrets"`
	Filter      SecretsFilter `json:"filter"`
}

// SecretsFilter narrows the secrets listed.
type SecretsFilter struct {
	URI      *string `json:"uri,omitempty"`
	Label    *string `json:"label,omitempty"`
	Revision *int    `json:"revision,omitempty"`
	OwnerTag *string `json:"owner-tag,omitempty"`
}

// ListSecretResults holds the result of a Secrets.ListSecrets call.
type ListSecretResults struct {
	Results []ListSecretResult `json:"results"`
}

// ListSecretResult describes one secret. The value is only present when
// it was asked for.
type ListSecretResult struct {
	URI              string             `json:"uri"`
	Version          int                `json:"version"`
	OwnerTag         string             `json:"owner-tag"`
	Description      string             `json:"description,omitempty"`
	Label            string             `json:"label,omitempty"`
	RotatePolicy     string             `json:"rotate-policy,omitempty"`
	NextRotateTime   *time.Time         `json:"next-rotate-time,omitempty"`
	LatestRevision   int                `json:"latest-revision"`
	LatestExpireTime *time.Time         `json:"latest-expire-time,omitempty"`
	CreateTime       time.Time          `json:"create-time"`
	UpdateTime       time.Time          `json:"update-time"`
	Revisions        []SecretRevision   `json:"revisions"`
	Access           []AccessInfo       `json:"access,omitempty"`
	Value            *SecretValueResult `json:"value,omitempty"`
}

// SecretRevision describes one revision of a secret.
type SecretRevision struct {
	Revision    int        `json:"revision"`
	BackendName *string    `json:"backend-name,omitempty"`
	CreateTime  *time.Time `json:"create-time,omitempty"`
	UpdateTime  *time.Time `json:"update-time,omitempty"`
	ExpireTime  *time.Time `json:"expire-time,omitempty"`
}

// AccessInfo describes who a secret is granted to.
type AccessInfo struct {
	TargetTag string `json:"target-tag"`
	ScopeTag  string `json:"scope-tag"`
	Role      string `json:"role"`
}

// SecretValueResult holds the base64 encoded content of a secret.
type SecretValueResult struct {
	Data  map[string]string `json:"data,omitempty"`
	Error *Error            `json:"error,omitempty"`
}
