// Package client is a thin reference client over the coordinator and
// storage-node wire protocol: split-and-upload, locate-and-download. It
// is not part of the core system and does no retries, striping, or
// parallel chunk transfer.
package client

import (
	"fmt"

	"github.com/BrianChoi12/minidfs/internal/rpctransport"
	"github.com/BrianChoi12/minidfs/internal/wire"
)

// DefaultChunkSize is the chunk size this client uses to split uploads,
// matching the 1 MiB boundary the coordinator's own test properties are
// exercised against. The wire protocol itself places no fixed chunk size
// on files.
const DefaultChunkSize = 1 << 20 // 1 MiB

// Client is a minimal reference client for one coordinator.
type Client struct {
	coordinatorAddr string
	chunkSize       int
}

// New constructs a Client that talks to the coordinator at
// coordinatorAddr, splitting uploads into chunkSize-byte pieces. A
// chunkSize of 0 uses DefaultChunkSize.
func New(coordinatorAddr string, chunkSize int) *Client {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Client{coordinatorAddr: coordinatorAddr, chunkSize: chunkSize}
}

// Upload splits data into chunks, asks the coordinator to place each one,
// and stores each chunk's bytes on the node the coordinator chose.
func (c *Client) Upload(filename string, data []byte) error {
	coord, err := rpctransport.Dial(c.coordinatorAddr)
	if err != nil {
		return fmt.Errorf("client: dial coordinator: %w", err)
	}
	defer coord.Close()

	numChunks := (len(data) + c.chunkSize - 1) / c.chunkSize
	if numChunks == 0 {
		numChunks = 1 // an empty file still allocates one zero-length chunk
	}

	for i := 0; i < numChunks; i++ {
		start := i * c.chunkSize
		end := start + c.chunkSize
		if end > len(data) {
			end = len(data)
		}
		piece := data[start:end]

		var loc wire.ChunkLocation
		allocArgs := &wire.ChunkAllocationRequest{
			Filename:   filename,
			ChunkIndex: int32(i),
			ChunkSize:  int64(len(piece)),
		}
		if err := coord.Call("Coordinator.AllocateChunkLocation", allocArgs, &loc); err != nil {
			return fmt.Errorf("client: allocate chunk %d: %w", i, err)
		}
		if len(loc.DataNodeAddresses) == 0 {
			return fmt.Errorf("client: no storage node returned for chunk %d", i)
		}

		node, err := rpctransport.Dial(loc.DataNodeAddresses[0])
		if err != nil {
			return fmt.Errorf("client: dial storage node %s: %w", loc.DataNodeAddresses[0], err)
		}
		var ack wire.Ack
		storeErr := node.Call("DataNode.StoreChunk", &wire.ChunkData{ChunkID: loc.ChunkID, Data: piece}, &ack)
		node.Close()
		if storeErr != nil {
			return fmt.Errorf("client: store chunk %d on %s: %w", i, loc.DataNodeAddresses[0], storeErr)
		}
	}

	return nil
}

// Download fetches every chunk of filename from its coordinator-reported
// locations and concatenates them in index order.
func (c *Client) Download(filename string) ([]byte, error) {
	coord, err := rpctransport.Dial(c.coordinatorAddr)
	if err != nil {
		return nil, fmt.Errorf("client: dial coordinator: %w", err)
	}
	defer coord.Close()

	var resp wire.FileLocationResponse
	if err := coord.Call("Coordinator.GetFileLocation", &wire.FileLocationRequest{Filename: filename}, &resp); err != nil {
		return nil, fmt.Errorf("client: lookup %s: %w", filename, err)
	}
	if !resp.Found {
		return nil, fmt.Errorf("client: file %s not found", filename)
	}

	var out []byte
	for _, chunk := range resp.Chunks {
		if len(chunk.DataNodeAddresses) == 0 {
			return nil, fmt.Errorf("client: chunk %s has no live host", chunk.ChunkID)
		}

		var lastErr error
		fetched := false
		for _, addr := range chunk.DataNodeAddresses {
			node, err := rpctransport.Dial(addr)
			if err != nil {
				lastErr = err
				continue
			}
			var data wire.ChunkData
			err = node.Call("DataNode.ReadChunk", &wire.ChunkRequest{ChunkID: chunk.ChunkID}, &data)
			node.Close()
			if err != nil {
				lastErr = err
				continue
			}
			out = append(out, data.Data...)
			fetched = true
			break
		}
		if !fetched {
			return nil, fmt.Errorf("client: fetch chunk %s: %w", chunk.ChunkID, lastErr)
		}
	}

	return out, nil
}
