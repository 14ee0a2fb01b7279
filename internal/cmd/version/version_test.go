package version

import (
	"testing"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/iostreams/iostreamstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		version   string
		buildDate string
		want      string
	}{
		{
			name:    "version only",
			version: "1.2.3",
			want:    "stackup version 1.2.3\n",
		},
		{
			name:      "version with date",
			version:   "v1.2.3",
			buildDate: "2026-02-11",
			want:      "stackup version 1.2.3 (2026-02-11)\n",
		},
		{
			name:    "dev version",
			version: "DEV",
			want:    "stackup version DEV\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.version, tt.buildDate))
		})
	}
}

func TestNewCmdVersion(t *testing.T) {
	tio := iostreamstest.New()
	f := &cmdutil.Factory{IOStreams: tio.IOStreams}

	cmd := NewCmdVersion(f, "0.4.0", "2026-10-01")
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "stackup version 0.4.0 (2026-10-01)\n", tio.OutBuf.String())
}
