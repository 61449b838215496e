package models

import "encoding/json"

// Per-category spec schemas (spec.md §3). Each is a distinct record type with
// explicit, mostly-optional fields — the design-notes "duck-typed spec maps
// -> tagged variants" adaptation (spec.md §9). A field's absence (rather than
// a zero value) is what lets the Compatibility Engine's missing-data policy
// ("a rule that depends on a field missing on either side is a no-op") work;
// these types are therefore built with pointers for fields that are
// genuinely optional in the original schema. The catalog and the
// Compatibility Engine read SpecMap directly; ToSpecMap converts a typed
// schema into a SpecMap, and nothing converts back.

// CPUSpecs is the cpu category schema.
type CPUSpecs struct {
	Socket             string  `json:"socket"`
	Cores              int     `json:"cores"`
	Threads            int     `json:"threads"`
	BaseClockGHz       float64 `json:"base_clock"`
	BoostClockGHz      float64 `json:"boost_clock"`
	TDPWatts           int     `json:"tdp"`
	IntegratedGraphics string  `json:"integrated_graphics"`
	Process            string  `json:"process"`
	Architecture       string  `json:"architecture"`
	PerformanceScore   *float64 `json:"performance_score,omitempty"`
}

// MotherboardSpecs is the motherboard category schema.
type MotherboardSpecs struct {
	Socket            string   `json:"socket"`
	Chipset           string   `json:"chipset"`
	FormFactor        string   `json:"form_factor"`
	MemorySlots       int      `json:"memory_slots"`
	MemoryType        string   `json:"memory_type"`
	MaxMemoryGB       int      `json:"max_memory_gb"`
	MaxMemorySpeedMHz int      `json:"max_memory_speed_mhz"`
	StorageSupport    []string `json:"storage_support"`
	PCIeSlots         []string `json:"pcie_slots"`
	NVMESlots         *int     `json:"nvme_slots,omitempty"`
	M2Slots           *int     `json:"m2_slots,omitempty"`
	SATAPorts         *int     `json:"sata_ports,omitempty"`
}

// MemorySpecs is the memory category schema.
type MemorySpecs struct {
	Type        string `json:"type"`
	CapacityGB  int    `json:"capacity_gb"`
	SpeedMHz    int    `json:"speed_mhz"`
	Modules     string `json:"modules"`
	CASLatency  string `json:"cas_latency"`
}

// GPUSpecs is the gpu category schema.
type GPUSpecs struct {
	Chipset          string   `json:"chipset"`
	MemorySize       string   `json:"memory_size"`
	CoreClockMHz     float64  `json:"core_clock"`
	BoostClockMHz    float64  `json:"boost_clock"`
	TDPWatts         int      `json:"tdp"`
	LengthMM         int      `json:"length"`
	Ports            []string `json:"ports"`
	PerformanceScore *float64 `json:"performance_score,omitempty"`
}

// PSUSpecs is the psu category schema.
type PSUSpecs struct {
	WattageW         int    `json:"wattage"`
	EfficiencyRating string `json:"efficiency_rating"`
	EfficiencyLevel  string `json:"efficiency_level"`
	Modular          string `json:"modular"`
	FormFactor       string `json:"form_factor"`
}

// CaseSpecs is the case category schema.
type CaseSpecs struct {
	FormFactor           string   `json:"form_factor"`
	FormFactorSupport    []string `json:"form_factor_support"`
	MaxGPULengthMM       int      `json:"max_gpu_length"`
	MaxCPUCoolerHeightMM int      `json:"max_cpu_cooler_height"`
	PSUShroud            bool     `json:"psu_shroud"`
	SidePanel            string   `json:"side_panel"`
}

// CPUCoolerSpecs is the cpu_cooler category schema.
type CPUCoolerSpecs struct {
	Type              string   `json:"type"`
	FanRPM            int      `json:"fan_rpm"`
	NoiseLevel        string   `json:"noise_level"`
	HeightMM          int      `json:"height"`
	CompatibleSockets []string `json:"compatible_sockets"`
}

// StorageSpecs is the storage category schema.
type StorageSpecs struct {
	CapacityGB int    `json:"capacity_gb"`
	Type       string `json:"type"`
	Interface  string `json:"interface"`
	FormFactor string `json:"form_factor"`
	NVMESlot   bool   `json:"-"`
}

// ToSpecMap converts any of the typed spec schemas above into the freely
// keyed SpecMap the Catalog Accessor and Compatibility Engine exchange, via
// a JSON roundtrip that mirrors how the teacher's JSONMap crosses the
// database boundary.
func ToSpecMap(v interface{}) SpecMap {
	m := SpecMap{}
	b, err := json.Marshal(v)
	if err != nil {
		return m
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return SpecMap{}
	}
	return m
}
