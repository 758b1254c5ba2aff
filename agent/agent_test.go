package agent

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacwrap/pacwrap/alpm"
	"github.com/pacwrap/pacwrap/transaction"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	blob := Blob{
		Params:   Parameters{Action: transaction.NewUpgrade(true, false, false), Mode: transaction.ModeLocal, DownloadBytes: 1024},
		Alpm:     AlpmConfigData{RootPath: "/mnt", Repos: []RepoConfig{{Name: "core", Servers: []string{"https://example.invalid"}}}},
		Metadata: *transaction.NewMetadata([]string{"firefox"}),
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, blob))

	decoded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "/mnt", decoded.Alpm.RootPath)
	assert.Equal(t, []string{"firefox"}, decoded.Metadata.Queue)
	assert.Equal(t, uint64(1024), decoded.Params.DownloadBytes)
}

func TestDecodeMagicMismatchIsFatal(t *testing.T) {
	_, err := Decode(bytes.NewReader(make([]byte, 7)))
	require.Error(t, err)
	var headerErr *HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.Equal(t, ExitMagicMismatch, headerErr.ExitCode)
}

func TestConductTransactionStagesAndCommits(t *testing.T) {
	fake := alpm.NewFakeHandle()
	fake.Sync["firefox"] = alpm.Package{Name: "firefox", Version: "1"}
	h := transaction.NewHandle(fake, transaction.NewMetadata([]string{"firefox"}))

	err := ConductTransaction(h, Parameters{Action: transaction.NewUpgrade(false, false, false), Mode: transaction.ModeLocal},
		func(queue []string, ignored map[string]bool) ([]string, []alpm.Package, error) {
			return nil, []alpm.Package{{Name: "firefox"}}, nil
		}, nil)

	require.NoError(t, err)
	assert.Contains(t, fake.TransAdd(), "firefox")
}
