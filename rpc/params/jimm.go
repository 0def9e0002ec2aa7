// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package params

import (
	"time"
)

// ListControllersResponse holds the controllers known to a JAAS
// aggregator.
type ListControllersResponse struct {
	Controllers []ControllerInfo `json:"controllers"`
}

// FindAuditEventsRequest holds the arguments of a JIMM.FindAuditEvents
// call. Every field narrows the search, zero values match everything.
type FindAuditEventsRequest struct {
	After    string `json:"after,omitempty"`
	Before   string `json:"before,omitempty"`
	UserTag  string `json:"user-tag,omitempty"`
	Model    string `json:"model,omitempty"`
	Method   string `json:"method,omitempty"`
	Offset   int    `json:"offset,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	SortTime bool   `json:"sortTime,omitempty"`
}

// AuditEvent is one facade call, or its response, recorded by JAAS.
type AuditEvent struct {
	Time           time.Time              `json:"time"`
	ConversationId string                 `json:"conversation-id"`
	MessageId      uint64                 `json:"message-id"`
	FacadeName     string                 `json:"facade-name"`
	FacadeMethod   string                 `json:"facade-method"`
	FacadeVersion  int                    `json:"facade-version"`
	ObjectId       string                 `json:"object-id"`
	UserTag        string                 `json:"user-tag"`
	Model          string                 `json:"model"`
	IsResponse     bool                   `json:"is-response"`
	Params         map[string]interface{} `json:"params"`
	Errors         map[string]interface{} `json:"errors"`
}

// AuditEvents holds the result of a JIMM.FindAuditEvents call.
type AuditEvents struct {
	Events []AuditEvent `json:"events"`
}
