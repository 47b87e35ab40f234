// Package nomenclature implements the partitioned Philips IntelliVue
// identifier space: bidirectional mapping between a numeric code and a
// symbolic name, where the same numeric value may mean different things in
// different partitions.
//
// The registry is never queried without specifying a partition except
// through the explicit NameAny fallback, which documents its
// preference order rather than silently picking one colliding entry.
package nomenclature

import "fmt"

// Partition is one of the six identifier subspaces the protocol defines.
type Partition uint8

const (
	PartObj            Partition = 1 // NOM_PART_OBJ
	PartSCADA          Partition = 2 // NOM_PART_SCADA
	PartEvent          Partition = 3 // NOM_PART_EVT
	PartDimension      Partition = 4 // NOM_PART_DIM
	PartParameterGroup Partition = 6 // NOM_PART_PGRP
	PartInfrastructure Partition = 8 // NOM_PART_INFRASTRUCT
)

func (p Partition) String() string {
	switch p {
	case PartObj:
		return "NOM_PART_OBJ"
	case PartSCADA:
		return "NOM_PART_SCADA"
	case PartEvent:
		return "NOM_PART_EVT"
	case PartDimension:
		return "NOM_PART_DIM"
	case PartParameterGroup:
		return "NOM_PART_PGRP"
	case PartInfrastructure:
		return "NOM_PART_INFRASTRUCT"
	default:
		return fmt.Sprintf("NOM_PART_UNKNOWN(%d)", uint8(p))
	}
}

// Well-known codes referenced directly by the wire codec and session engine.
// Values marked "spec" are reproduced bit-exactly from the wire-format
// contract; values marked "PIPG" are drawn from the vendor's published
// nomenclature tables and are not independently re-verified here; each
// constant's comment carries its marker.
const (
	// AttrNuValObs is NOM_ATTR_NU_VAL_OBS, partition PartObj. (spec)
	AttrNuValObs uint16 = 2384
	// AttrTimeStampAbs is NOM_ATTR_TIME_STAMP_ABS, partition PartObj. (spec)
	AttrTimeStampAbs uint16 = 2448
	// AttrNetAddrInfo is NOM_ATTR_NET_ADDR_INFO, partition PartObj. (spec)
	// Collides numerically with SatO2VenCent in PartSCADA — the canonical
	// example of why lookups must be partition-qualified.
	AttrNetAddrInfo uint16 = 61696
	// SatO2VenCent is NOM_SAT_O2_VEN_CENT, partition PartSCADA. (spec)
	SatO2VenCent uint16 = 61696

	// MocVmoMetricNu is NOM_MOC_VMO_METRIC_NU, partition PartObj. (PIPG)
	MocVmoMetricNu uint16 = 6
	// MocVmsMds is NOM_MOC_VMS_MDS, partition PartObj. (PIPG)
	MocVmsMds uint16 = 33

	// NotiMdsCreat is NOM_NOTI_MDS_CREAT, partition PartEvent. (PIPG)
	NotiMdsCreat uint16 = 3
	// ActPollMdibDataExt is NOM_ACT_POLL_MDIB_DATA_EXT, partition PartObj. (PIPG)
	ActPollMdibDataExt uint16 = 1030
	// AttrGrpMetricValObs is NOM_ATTR_GRP_METRIC_VAL_OBS, partition PartObj. (PIPG)
	AttrGrpMetricValObs uint16 = 3077

	// PulsOximSatO2 is NOM_PULS_OXIM_SAT_O2, partition PartDimension. (PIPG)
	PulsOximSatO2 uint16 = 20730
)

// preferredOrder is the fallback search order for the partition-free
// convenience lookup,: "prefers the SCADA partition when overloaded".
var preferredOrder = []Partition{PartSCADA, PartObj, PartEvent, PartDimension, PartParameterGroup, PartInfrastructure}

// Registry is a partitioned code<->name table. The zero value is usable and
// starts empty; use New to get one pre-populated with the codes this gateway
// actually dispatches on.
type Registry struct {
	byCode map[Partition]map[uint16]string
	byName map[Partition]map[string]uint16
}

// New returns a Registry seeded with the identifiers this gateway's wire
// codec and session engine reference by name.
func New() *Registry {
	r := &Registry{
		byCode: make(map[Partition]map[uint16]string),
		byName: make(map[Partition]map[string]uint16),
	}
	r.register(PartObj, AttrNuValObs, "NOM_ATTR_NU_VAL_OBS")
	r.register(PartObj, AttrTimeStampAbs, "NOM_ATTR_TIME_STAMP_ABS")
	r.register(PartObj, AttrNetAddrInfo, "NOM_ATTR_NET_ADDR_INFO")
	r.register(PartSCADA, SatO2VenCent, "NOM_SAT_O2_VEN_CENT")
	r.register(PartObj, MocVmoMetricNu, "NOM_MOC_VMO_METRIC_NU")
	r.register(PartObj, MocVmsMds, "NOM_MOC_VMS_MDS")
	r.register(PartEvent, NotiMdsCreat, "NOM_NOTI_MDS_CREAT")
	r.register(PartObj, ActPollMdibDataExt, "NOM_ACT_POLL_MDIB_DATA_EXT")
	r.register(PartObj, AttrGrpMetricValObs, "NOM_ATTR_GRP_METRIC_VAL_OBS")
	r.register(PartDimension, PulsOximSatO2, "NOM_PULS_OXIM_SAT_O2")
	return r
}

func (r *Registry) register(part Partition, code uint16, name string) {
	if r.byCode[part] == nil {
		r.byCode[part] = make(map[uint16]string)
	}
	if r.byName[part] == nil {
		r.byName[part] = make(map[string]uint16)
	}
	r.byCode[part][code] = name
	r.byName[part][name] = code
}

// Register adds or overwrites a (partition, code) <-> name mapping. Intended
// for tests and for callers that extend the table from an external MIB-like
// source; the core gateway never calls this at runtime.
func (r *Registry) Register(part Partition, code uint16, name string) {
	r.register(part, code, name)
}

// Name resolves a (partition, code) pair to its symbolic name. ok is false
// when the partition has no entry for that code.
func (r *Registry) Name(part Partition, code uint16) (name string, ok bool) {
	m, exists := r.byCode[part]
	if !exists {
		return "", false
	}
	name, ok = m[code]
	return name, ok
}

// Code resolves a (partition, name) pair back to its numeric code.
func (r *Registry) Code(part Partition, name string) (code uint16, ok bool) {
	m, exists := r.byName[part]
	if !exists {
		return 0, false
	}
	code, ok = m[name]
	return code, ok
}

// stateFlagBits is the vendor's 16-bit measurement-state flag table, ordered
// from bit 15 (high) down to bit 0 (low) to match the wire's state field
// layout.
var stateFlagBits = [16]string{
	"INVALID",
	"QUESTIONABLE",
	"UNAVAILABLE",
	"CALIBRATION_ONGOING",
	"TEST_DATA",
	"DEMO_DATA",
	"MEASUREMENT_STATE_UNDEFINED1",
	"MEASUREMENT_STATE_UNDEFINED2",
	"VALIDATED_DATA",
	"EARLY_INDICATION",
	"MSMT_ONGOING",
	"MEASUREMENT_STATE_UNDEFINED3",
	"MEASUREMENT_STATE_UNDEFINED4",
	"MEASUREMENT_STATE_UNDEFINED5",
	"MSMT_STATE_IN_ALARM",
	"MSMT_STATE_AL_INHIBITED",
}

// StateFlagNames reports the symbolic names of every set bit in a
// NuObsValue's measurement-state field, high bit first.
func StateFlagNames(state uint16) []string {
	var names []string
	for bit := 15; bit >= 0; bit-- {
		if state&(1<<uint(bit)) != 0 {
			names = append(names, stateFlagBits[15-bit])
		}
	}
	return names
}

// NameAny resolves a bare code with no partition context, for the legacy
// positions where the partition is unambiguous from where the field sits in
// the PDU tree rather than from an explicit tag. When the code is defined in
// more than one partition, the partition actually used is returned alongside
// the name so callers (and tests) can tell which one won; the search order is
// SCADA, then OBJ, then EVT, DIM, PGRP, INFRASTRUCT.
func (r *Registry) NameAny(code uint16) (name string, part Partition, ok bool) {
	for _, p := range preferredOrder {
		if name, ok := r.Name(p, code); ok {
			return name, p, true
		}
	}
	return "", 0, false
}
