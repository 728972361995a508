package datanode

import "time"

// HeartbeatPeriod is how often the storage node sends an unsolicited
// Heartbeat to the coordinator.
const HeartbeatPeriod = 10 * time.Second

// HeartbeatDeadline bounds how long a single Heartbeat (or the initial
// RegisterDataNode) call may take before it is considered failed.
const HeartbeatDeadline = 5 * time.Second

const bytesPerGB = 1 << 30

// Config holds the storage node's runtime configuration, populated from
// its CLI flags.
type Config struct {
	ListenAddr      string
	CoordinatorAddr string
	StoragePath     string
	CapacityBytes   int64
}

// DefaultConfig returns the storage node's default configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      "0.0.0.0:50052",
		CoordinatorAddr: "localhost:50051",
		StoragePath:     "./datanode_storage",
		CapacityBytes:   10 * bytesPerGB,
	}
}

// CapacityBytesFromGB converts a whole-GB capacity flag value to bytes.
func CapacityBytesFromGB(gb int64) int64 {
	return gb * bytesPerGB
}
