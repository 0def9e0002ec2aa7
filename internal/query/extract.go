// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package query

import (
	"strings"

	"github.com/juju/names/v5"
)

// CloudName returns the cloud name from a cloud tag, "cloud-aws" gives
// "aws".
func CloudName(tag string) string {
	if tag == "" {
		return ""
	}
	if cloud, err := names.ParseCloudTag(tag); err == nil {
		return cloud.Id()
	}
	return strings.TrimPrefix(tag, names.CloudTagKind+"-")
}

// CredentialName returns the owner of a cloud credential from its tag,
// "cloudcred-google_eggman@external_juju" gives "eggman".
func CredentialName(tag string) string {
	if tag == "" {
		return ""
	}
	if cred, err := names.ParseCloudCredentialTag(tag); err == nil {
		return cred.Owner().Name()
	}
	// Local bootstraps can produce credentials the tag parser rejects.
	parts := strings.Split(strings.TrimPrefix(tag, names.CloudCredentialTagKind+"-"), "_")
	if len(parts) < 2 {
		return ""
	}
	owner, _, _ := strings.Cut(parts[1], "@")
	return owner
}

// OwnerName returns the user name, without domain, from a user tag,
// "user-eggman@external" gives "eggman".
func OwnerName(tag string) string {
	if tag == "" {
		return ""
	}
	if user, err := names.ParseUserTag(tag); err == nil {
		return user.Name()
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(tag, names.UserTagKind+"-"), "@")
	return name
}

// UserName returns the user name, with any domain, from a user tag,
// "user-eggman@external" gives "eggman@external".
func UserName(tag string) string {
	return strings.TrimPrefix(tag, names.UserTagKind+"-")
}
