// Copyright 2024 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package multiwatcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/juju/errors"

	"github.com/juju/juju-dashboard/core/status"
)

// Life describes the lifecycle state of an entity ("alive", "dying"
// or "dead").
type Life string

// EntityKind names the kind of entity carried by a delta.
type EntityKind string

const (
	ActionKind      EntityKind = "action"
	AnnotationKind  EntityKind = "annotation"
	ApplicationKind EntityKind = "application"
	CharmKind       EntityKind = "charm"
	MachineKind     EntityKind = "machine"
	ModelKind       EntityKind = "model"
	RelationKind    EntityKind = "relation"
	UnitKind        EntityKind = "unit"
)

// ChangeType is the operation a delta applies to its entity.
type ChangeType string

const (
	Add    ChangeType = "add"
	Change ChangeType = "change"
	Remove ChangeType = "remove"
)

// EntityInfo is implemented by all entity Info types.
type EntityInfo interface {
	// EntityId returns an identifier that will uniquely
	// identify the entity within its kind.
	EntityId() EntityId
}

// EntityId uniquely identifies an entity reported by an AllWatcher.
type EntityId struct {
	Kind      EntityKind `json:"kind"`
	ModelUUID string     `json:"model-uuid"`
	Id        string     `json:"id"`
}

// Delta holds details of a change to the model. On the wire it is a
// three element array: [kind, operation, entity].
type Delta struct {
	Type   ChangeType
	Entity EntityInfo
}

// Removed reports whether the delta removes its entity.
func (d Delta) Removed() bool {
	return d.Type == Remove
}

// MarshalJSON implements json.Marshaler.
func (d *Delta) MarshalJSON() ([]byte, error) {
	if d.Entity == nil {
		return nil, errors.NotValidf("delta without entity")
	}
	b, err := json.Marshal(d.Entity)
	if err != nil {
		return nil, errors.Trace(err)
	}
	op := d.Type
	if op == "" {
		op = Change
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	fmt.Fprintf(&buf, "%q,%q,", d.Entity.EntityId().Kind, op)
	buf.Write(b)
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Kinds the dashboard does not
// track decode into an *UnknownInfo rather than failing, so that a newer
// controller cannot break the stream.
func (d *Delta) UnmarshalJSON(data []byte) error {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return errors.NotValidf("delta %s", data)
	}
	if len(elements) != 3 {
		return errors.NotValidf("delta with %d elements", len(elements))
	}
	var kind EntityKind
	if err := json.Unmarshal(elements[0], &kind); err != nil {
		return errors.NotValidf("delta kind %s", elements[0])
	}
	var op ChangeType
	if err := json.Unmarshal(elements[1], &op); err != nil {
		return errors.NotValidf("delta operation %s", elements[1])
	}
	switch op {
	case Add, Change, Remove:
	default:
		return errors.NotValidf("delta operation %q", op)
	}

	var entity EntityInfo
	switch kind {
	case ModelKind:
		entity = new(ModelInfo)
	case MachineKind:
		entity = new(MachineInfo)
	case ApplicationKind:
		entity = new(ApplicationInfo)
	case UnitKind:
		entity = new(UnitInfo)
	case RelationKind:
		entity = new(RelationInfo)
	case AnnotationKind:
		entity = new(AnnotationInfo)
	case CharmKind:
		entity = new(CharmInfo)
	case ActionKind:
		entity = new(ActionInfo)
	default:
		entity = &UnknownInfo{Kind: kind}
	}
	if err := json.Unmarshal(elements[2], entity); err != nil {
		return errors.Annotatef(errors.NotValidf("%s entity", kind), "%v", err)
	}
	d.Type = op
	d.Entity = entity
	return nil
}

// StatusInfo holds the unit, machine, application and model status
// information carried by deltas.
type StatusInfo struct {
	Err     string                 `json:"err,omitempty"`
	Current status.Status          `json:"current"`
	Message string                 `json:"message"`
	Since   *time.Time             `json:"since,omitempty"`
	Version string                 `json:"version"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Address describes a network address.
type Address struct {
	Value string `json:"value"`
	Type  string `json:"type"`
	Scope string `json:"scope"`
}

// HardwareCharacteristics describes the hardware of a machine.
type HardwareCharacteristics struct {
	Arch             string `json:"arch,omitempty"`
	Mem              uint64 `json:"mem,omitempty"`
	RootDisk         uint64 `json:"root-disk,omitempty"`
	CpuCores         uint64 `json:"cpu-cores,omitempty"`
	CpuPower         uint64 `json:"cpu-power,omitempty"`
	AvailabilityZone string `json:"availability-zone,omitempty"`
}

// MachineInfo holds the information about a machine.
type MachineInfo struct {
	ModelUUID                string                   `json:"model-uuid"`
	Id                       string                   `json:"id"`
	InstanceId               string                   `json:"instance-id"`
	ContainerType            string                   `json:"container-type"`
	AgentStatus              StatusInfo               `json:"agent-status"`
	InstanceStatus           StatusInfo               `json:"instance-status"`
	Life                     Life                     `json:"life"`
	Series                   string                   `json:"series"`
	SupportedContainers      []string                 `json:"supported-containers"`
	SupportedContainersKnown bool                     `json:"supported-containers-known"`
	HardwareCharacteristics  *HardwareCharacteristics `json:"hardware-characteristics,omitempty"`
	Jobs                     []string                 `json:"jobs"`
	Addresses                []Address                `json:"addresses"`
	HasVote                  bool                     `json:"has-vote"`
	WantsVote                bool                     `json:"wants-vote"`
}

// EntityId returns a unique identifier for a machine across
// models.
func (i *MachineInfo) EntityId() EntityId {
	return EntityId{
		Kind:      MachineKind,
		ModelUUID: i.ModelUUID,
		Id:        i.Id,
	}
}

// ApplicationInfo holds the information about an application. UnitCount
// is not sent by controllers; it is maintained from the unit deltas.
type ApplicationInfo struct {
	ModelUUID       string                 `json:"model-uuid"`
	Name            string                 `json:"name"`
	Exposed         bool                   `json:"exposed"`
	CharmURL        string                 `json:"charm-url"`
	OwnerTag        string                 `json:"owner-tag"`
	Life            Life                   `json:"life"`
	MinUnits        int                    `json:"min-units"`
	Constraints     map[string]interface{} `json:"constraints,omitempty"`
	Subordinate     bool                   `json:"subordinate"`
	Status          StatusInfo             `json:"status"`
	WorkloadVersion string                 `json:"workload-version"`
	UnitCount       int                    `json:"unit-count,omitempty"`
}

// EntityId returns a unique identifier for an application across
// models.
func (i *ApplicationInfo) EntityId() EntityId {
	return EntityId{
		Kind:      ApplicationKind,
		ModelUUID: i.ModelUUID,
		Id:        i.Name,
	}
}

// Port identifies a network port number for a particular protocol.
type Port struct {
	Protocol string `json:"protocol"`
	Number   int    `json:"number"`
}

// PortRange represents a single range of ports.
type PortRange struct {
	FromPort int    `json:"from-port"`
	ToPort   int    `json:"to-port"`
	Protocol string `json:"protocol"`
}

// UnitInfo holds the information about a unit.
type UnitInfo struct {
	ModelUUID      string      `json:"model-uuid"`
	Name           string      `json:"name"`
	Application    string      `json:"application"`
	Series         string      `json:"series"`
	CharmURL       string      `json:"charm-url"`
	Life           Life        `json:"life"`
	PublicAddress  string      `json:"public-address"`
	PrivateAddress string      `json:"private-address"`
	MachineId      string      `json:"machine-id"`
	Ports          []Port      `json:"ports"`
	PortRanges     []PortRange `json:"port-ranges"`
	Principal      string      `json:"principal"`
	Subordinate    bool        `json:"subordinate"`
	// Workload and agent state are modelled separately.
	WorkloadStatus StatusInfo `json:"workload-status"`
	AgentStatus    StatusInfo `json:"agent-status"`
}

// EntityId returns a unique identifier for a unit across
// models.
func (i *UnitInfo) EntityId() EntityId {
	return EntityId{
		Kind:      UnitKind,
		ModelUUID: i.ModelUUID,
		Id:        i.Name,
	}
}

// ActionInfo holds the information about an action.
type ActionInfo struct {
	ModelUUID  string                 `json:"model-uuid"`
	Id         string                 `json:"id"`
	Receiver   string                 `json:"receiver"`
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Status     string                 `json:"status"`
	Message    string                 `json:"message"`
	Results    map[string]interface{} `json:"results,omitempty"`
	Enqueued   time.Time              `json:"enqueued"`
	Started    time.Time              `json:"started"`
	Completed  time.Time              `json:"completed"`
}

// EntityId returns a unique identifier for an action across
// models.
func (i *ActionInfo) EntityId() EntityId {
	return EntityId{
		Kind:      ActionKind,
		ModelUUID: i.ModelUUID,
		Id:        i.Id,
	}
}

// RelationInfo holds the information about a relation.
type RelationInfo struct {
	ModelUUID string     `json:"model-uuid"`
	Key       string     `json:"key"`
	Id        int        `json:"id"`
	Endpoints []Endpoint `json:"endpoints"`
}

// CharmRelation describes one side of a relation as declared by a charm.
type CharmRelation struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Interface string `json:"interface"`
	Optional  bool   `json:"optional"`
	Limit     int    `json:"limit"`
	Scope     string `json:"scope"`
}

// Endpoint holds an application-relation pair.
type Endpoint struct {
	ApplicationName string        `json:"application-name"`
	Relation        CharmRelation `json:"relation"`
}

// EntityId returns a unique identifier for a relation across
// models.
func (i *RelationInfo) EntityId() EntityId {
	return EntityId{
		Kind:      RelationKind,
		ModelUUID: i.ModelUUID,
		Id:        i.Key,
	}
}

// AnnotationInfo holds the information about an annotation.
type AnnotationInfo struct {
	ModelUUID   string            `json:"model-uuid"`
	Tag         string            `json:"tag"`
	Annotations map[string]string `json:"annotations"`
}

// EntityId returns a unique identifier for an annotation across
// models.
func (i *AnnotationInfo) EntityId() EntityId {
	return EntityId{
		Kind:      AnnotationKind,
		ModelUUID: i.ModelUUID,
		Id:        i.Tag,
	}
}

// CharmInfo holds the information about a charm.
type CharmInfo struct {
	ModelUUID    string                 `json:"model-uuid"`
	CharmURL     string                 `json:"charm-url"`
	CharmVersion string                 `json:"charm-version"`
	Life         Life                   `json:"life"`
	Config       map[string]interface{} `json:"config,omitempty"`
}

// EntityId returns a unique identifier for a charm across models.
func (i *CharmInfo) EntityId() EntityId {
	return EntityId{
		Kind:      CharmKind,
		ModelUUID: i.ModelUUID,
		Id:        i.CharmURL,
	}
}

// SLA holds the service level of a model.
type SLA struct {
	Level string `json:"level"`
	Owner string `json:"owner"`
}

// ModelInfo holds the information about a model. CloudTag, Region, Type
// and Version are not part of the model delta; they are seeded from the
// full status of the model.
type ModelInfo struct {
	ModelUUID      string                 `json:"model-uuid"`
	Name           string                 `json:"name"`
	Life           Life                   `json:"life"`
	Owner          string                 `json:"owner"`
	ControllerUUID string                 `json:"controller-uuid"`
	IsController   bool                   `json:"is-controller"`
	Config         map[string]interface{} `json:"config,omitempty"`
	Status         StatusInfo             `json:"status"`
	Constraints    map[string]interface{} `json:"constraints,omitempty"`
	SLA            SLA                    `json:"sla"`

	CloudTag string `json:"cloud-tag,omitempty"`
	Region   string `json:"region,omitempty"`
	Type     string `json:"type,omitempty"`
	Version  string `json:"version,omitempty"`
}

// EntityId returns a unique identifier for a model.
func (i *ModelInfo) EntityId() EntityId {
	return EntityId{
		Kind:      ModelKind,
		ModelUUID: i.ModelUUID,
		Id:        i.ModelUUID,
	}
}

// UnknownInfo holds an entity of a kind the dashboard does not track,
// such as blocks or remote applications.
type UnknownInfo struct {
	Kind EntityKind
	Raw  json.RawMessage
}

// EntityId returns the kind and, when present, the model of the entity.
func (i *UnknownInfo) EntityId() EntityId {
	var id struct {
		ModelUUID string `json:"model-uuid"`
	}
	_ = json.Unmarshal(i.Raw, &id)
	return EntityId{
		Kind:      i.Kind,
		ModelUUID: id.ModelUUID,
	}
}

// MarshalJSON implements json.Marshaler.
func (i *UnknownInfo) MarshalJSON() ([]byte, error) {
	if len(i.Raw) == 0 {
		return []byte("{}"), nil
	}
	return i.Raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *UnknownInfo) UnmarshalJSON(data []byte) error {
	i.Raw = append(i.Raw[:0], data...)
	return nil
}
