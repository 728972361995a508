// Package wire defines the request/response shapes exchanged between the
// client, the coordinator and the storage nodes. Every RPC in the system
// uses the net/rpc convention: a method takes a pointer to one of these
// request types and fills in a pointer to the matching reply type.
package wire

import "errors"

// Sentinel errors surfaced through net/rpc's error return. net/rpc carries
// only the error string across the wire, so callers compare against these
// by message rather than with errors.Is.
var (
	// ErrResourceExhausted is returned by AllocateChunkLocation when no
	// storage node qualifies for placement.
	ErrResourceExhausted = errors.New("RESOURCE_EXHAUSTED: no storage node available for placement")
	// ErrNotFound is returned by ReadChunk when the requested chunk is
	// absent locally or fails its integrity check.
	ErrNotFound = errors.New("NOT_FOUND: chunk not present or failed verification")
)

// DataNodeInfo announces a storage node's address and currently available
// capacity. Used by RegisterDataNode.
type DataNodeInfo struct {
	Address        string
	AvailableSpace int64
}

// DataNodeHeartbeat is the periodic, unsolicited report a storage node
// sends the coordinator.
type DataNodeHeartbeat struct {
	Address        string
	StoredChunkIDs []string
	AvailableSpace int64
	CurrentLoad    int32
}

// HeartbeatResponse acknowledges a heartbeat and, in the future, directs
// the storage node to garbage-collect chunks the coordinator no longer
// believes it should hold.
type HeartbeatResponse struct {
	OK             bool
	ChunksToDelete []string
}

// Ack is a generic acknowledgement used by RegisterDataNode and StoreChunk.
type Ack struct {
	OK      bool
	Message string
}

// ChunkAllocationRequest asks the coordinator to place one new chunk.
type ChunkAllocationRequest struct {
	Filename   string
	ChunkIndex int32
	ChunkSize  int64
}

// ChunkLocation names one chunk and the storage-node addresses believed to
// hold it.
type ChunkLocation struct {
	ChunkID           string
	DataNodeAddresses []string
}

// FileLocationRequest asks the coordinator for every chunk making up a
// file.
type FileLocationRequest struct {
	Filename string
}

// FileLocationResponse is the coordinator's answer to FileLocationRequest.
type FileLocationResponse struct {
	Found  bool
	Chunks []ChunkLocation
}

// ChunkRequest asks a storage node for one chunk's bytes.
type ChunkRequest struct {
	ChunkID string
}

// ChunkData carries one chunk's bytes.
type ChunkData struct {
	ChunkID string
	Data    []byte
}
