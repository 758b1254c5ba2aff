// Package agent implements the wire protocol and transaction-agent
// binary logic for pacwrap's Privilege-Separated Agent Protocol
// (spec.md §5), grounded on
// original_source/pacwrap-agent/src/agent.rs and
// pacwrap-core/src/sync/transaction/commit.rs's write_agent_params.
package agent

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pacwrap/pacwrap/transaction"
)

// Magic is the agent parameter blob's header magic number, distinct
// from fsstate.SnapshotMagic (spec.md §9 Open Question 1): this
// header's version triple is checked strictly, any mismatch fatal,
// since the agent binary and the parent must always be the exact same
// build.
const Magic uint32 = 0x50574147 // "PWAG"

// Version is the current build's major.minor.patch triple, stamped
// into the header the same way original_source reads
// CARGO_PKG_VERSION_{MAJOR,MINOR,PATCH} at compile time.
var Version = [3]byte{0, 1, 0}

// Exit codes the agent binary returns, read back by the parent
// process (agentlaunch) to classify the failure (spec.md §5).
const (
	ExitSuccess               = 0
	ExitTransactionFailure    = 1
	ExitParamsUnavailable     = 2
	ExitDeserializationFailed = 3
	ExitMagicMismatch         = 4
	ExitVersionMismatch       = 5
)

// AlpmConfigData is the subset of repositories.conf the agent needs to
// re-open its own alpm handle inside the sandboxed mount namespace,
// grounded on original_source's AlpmConfigData.
type AlpmConfigData struct {
	RootPath   string
	DBPath     string
	GPGDir     string
	CacheDir   string
	Repos      []RepoConfig
	HoldPkgs   []string
	IgnorePkgs []string
}

// RepoConfig mirrors one [repository] stanza of repositories.conf.
type RepoConfig struct {
	Name    string
	Servers []string
	SigLevel string
}

// Parameters is the per-transaction parameter blob, grounded on
// original_source's TransactionParameters. TransactionID has no
// original_source equivalent: original_source correlates parent/agent
// log lines by PID alone, but this module's agent runs detached from a
// terminal under the sandbox, so a stable ID threaded through both
// sides' structured log lines is the only way to correlate them after
// the fact.
type Parameters struct {
	TransactionID uuid.UUID
	Action        transaction.Type
	Mode          transaction.Mode
	DownloadBytes uint64
	DownloadFiles int
}

// Blob is everything write_agent_params serializes, in wire order.
type Blob struct {
	Params   Parameters
	Alpm     AlpmConfigData
	Metadata transaction.Metadata
}

// WriteHeader writes the 7-byte header: u32 LE magic + 3 semver bytes.
func WriteHeader(w io.Writer) error {
	header := make([]byte, 7)
	binary.LittleEndian.PutUint32(header[0:4], Magic)
	header[4], header[5], header[6] = Version[0], Version[1], Version[2]
	_, err := w.Write(header)
	return err
}

// Encode writes the full parameter blob (header + 3 sequential gob
// values) to w, matching write_agent_params's three serialize() calls.
//
// gob is used for the same reason as the filesystem snapshot codec
// (see fsstate.Snapshot.Encode / DESIGN.md): the only schema'd binary
// codec in the example pack is protobuf, which requires generated
// .pb.go stubs this exercise must not fabricate.
func Encode(w io.Writer, blob Blob) error {
	if err := WriteHeader(w); err != nil {
		return fmt.Errorf("failed to write agent header: %w", err)
	}
	enc := gob.NewEncoder(w)
	if err := enc.Encode(blob.Params); err != nil {
		return fmt.Errorf("failed to encode transaction parameters: %w", err)
	}
	if err := enc.Encode(blob.Alpm); err != nil {
		return fmt.Errorf("failed to encode alpm config data: %w", err)
	}
	if err := enc.Encode(blob.Metadata); err != nil {
		return fmt.Errorf("failed to encode transaction metadata: %w", err)
	}
	return nil
}

// HeaderError reports the exit code the agent binary should exit with
// when Decode fails: ExitParamsUnavailable (header unreadable),
// ExitMagicMismatch, ExitVersionMismatch or ExitDeserializationFailed.
type HeaderError struct {
	ExitCode int
	Message  string
}

func (e *HeaderError) Error() string { return e.Message }

// Decode reads and validates the header, then the three sequential
// blob values, matching agent.rs's transact()/deserialize() exactly:
// a magic mismatch is fatal (ExitMagicMismatch), a version mismatch is
// fatal (ExitVersionMismatch), and a deserialization failure is fatal
// (ExitDeserializationFailed) — unlike the filesystem snapshot's
// tolerant header, the agent blob's whole job is to exactly match one
// build of the parent binary, so every mismatch here aborts instead of
// falling back to an empty value.
func Decode(r io.Reader) (Blob, error) {
	header := make([]byte, 7)
	if _, err := io.ReadFull(r, header); err != nil {
		return Blob{}, &HeaderError{ExitCode: ExitParamsUnavailable, Message: "failed to read agent header: " + err.Error()}
	}

	magic := binary.LittleEndian.Uint32(header[0:4])
	if magic != Magic {
		return Blob{}, &HeaderError{ExitCode: ExitMagicMismatch, Message: fmt.Sprintf("magic number %d != %d", magic, Magic)}
	}
	if header[4] != Version[0] || header[5] != Version[1] || header[6] != Version[2] {
		return Blob{}, &HeaderError{ExitCode: ExitVersionMismatch, Message: fmt.Sprintf("%d.%d.%d != %d.%d.%d", Version[0], Version[1], Version[2], header[4], header[5], header[6])}
	}

	var blob Blob
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&blob.Params); err != nil {
		return Blob{}, &HeaderError{ExitCode: ExitDeserializationFailed, Message: "deserialization error: " + err.Error()}
	}
	if err := dec.Decode(&blob.Alpm); err != nil {
		return Blob{}, &HeaderError{ExitCode: ExitDeserializationFailed, Message: "deserialization error: " + err.Error()}
	}
	if err := dec.Decode(&blob.Metadata); err != nil {
		return Blob{}, &HeaderError{ExitCode: ExitDeserializationFailed, Message: "deserialization error: " + err.Error()}
	}
	return blob, nil
}

// EncodeToBytes is a convenience wrapper for agentlaunch, which writes
// the result directly to the parameter file.
func EncodeToBytes(blob Blob) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, blob); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
