// State blob codec: JSON, lz4-compressed, with a blake3 checksum over
// the raw JSON. Decoding verifies the checksum and validates the decoded
// document against a schema before unmarshaling, so a corrupt or
// truncated save can never produce a half-valid economy.
package persistence

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"lukechampine.com/blake3"

	"github.com/talgya/keystroke-kingdom/internal/econ"
)

// stateSchema pins the fields and ranges a save must carry to be worth
// restoring. Extra fields pass through untouched.
const stateSchema = `{
	"type": "object",
	"required": [
		"current_day", "total_days", "actions_remaining",
		"employment", "inflation", "capacity",
		"public_spending", "private_credit", "net_exports",
		"tax_rate", "policy_rate", "sectoral_balances"
	],
	"properties": {
		"current_day": {"type": "integer", "minimum": 1},
		"total_days": {"type": "integer", "minimum": 1},
		"actions_remaining": {"type": "integer", "minimum": 0},
		"employment": {"type": "number", "minimum": 50, "maximum": 100},
		"inflation": {"type": "number", "minimum": 0},
		"tax_rate": {"type": "number", "minimum": 0, "maximum": 50},
		"policy_rate": {"type": "number", "minimum": 0, "maximum": 10},
		"capacity": {
			"type": "object",
			"required": ["energy", "skills", "logistics"],
			"properties": {
				"energy": {"type": "number", "minimum": 10},
				"skills": {"type": "number", "minimum": 10},
				"logistics": {"type": "number", "minimum": 10}
			}
		},
		"sectoral_balances": {
			"type": "object",
			"required": ["government", "private", "external"]
		}
	}
}`

var compiledSchema = jsonschema.MustCompileString("state.schema.json", stateSchema)

// encodeState serializes a state to a compressed blob plus the checksum
// of the uncompressed JSON.
func encodeState(s *econ.State) ([]byte, string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, "", fmt.Errorf("marshal state: %w", err)
	}

	sum := blake3.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, "", fmt.Errorf("compress state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("flush compressor: %w", err)
	}
	return buf.Bytes(), checksum, nil
}

// decodeState reverses encodeState, verifying checksum and schema.
func decodeState(blob []byte, checksum string) (*econ.State, error) {
	zr := lz4.NewReader(bytes.NewReader(blob))
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress state: %w", err)
	}

	sum := blake3.Sum256(raw)
	if hex.EncodeToString(sum[:]) != checksum {
		return nil, fmt.Errorf("checksum mismatch, save corrupt")
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal save document: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("save failed schema validation: %w", err)
	}

	var s econ.State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &s, nil
}
