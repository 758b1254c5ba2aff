package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanBytes(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want string
	}{
		{name: "bytes", n: 512, want: "512 B"},
		{name: "kilobytes", n: 2048, want: "2.05 kB"},
		{name: "megabytes", n: 5_500_000, want: "5.50 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, humanBytes(tt.n))
		})
	}
}

func TestTotalSizeLabel(t *testing.T) {
	assert.Equal(t, "Total Removed Size", totalSizeLabel("removal"))
	assert.Equal(t, "Total Installed Size", totalSizeLabel("installation"))
}
