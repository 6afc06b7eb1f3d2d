package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/mkarimof/quizduel/pkg/game"
)

// encodeSnapshot serializes a session snapshot to zstd-compressed JSON
// for the snapshot blob column.
func encodeSnapshot(snapshot game.Snapshot) ([]byte, error) {
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %v", err)
	}

	compressed := bytes.NewBuffer(nil)
	compWriter, err := zstd.NewWriter(compressed, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %v", err)
	}
	if _, err := compWriter.Write(b); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %v", err)
	}
	if err := compWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zstd writer: %v", err)
	}

	return compressed.Bytes(), nil
}

// decodeSnapshot reverses encodeSnapshot.
func decodeSnapshot(data []byte) (game.Snapshot, error) {
	var snapshot game.Snapshot

	compReader, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return snapshot, fmt.Errorf("failed to create zstd reader: %v", err)
	}
	defer compReader.Close()

	b, err := io.ReadAll(compReader)
	if err != nil {
		return snapshot, fmt.Errorf("failed to read decompressed snapshot: %v", err)
	}

	if err := json.Unmarshal(b, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to unmarshal snapshot: %v", err)
	}

	return snapshot, nil
}
