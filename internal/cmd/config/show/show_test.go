package show

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/iostreams/iostreamstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowRun(t *testing.T) {
	tio := iostreamstest.New()
	cfg := config.DefaultConfig()
	cfg.Install.Dir = "/opt/localstack"
	cfg.Startup.Timeout = 3 * time.Minute

	err := showRun(context.Background(), &ShowOptions{
		IOStreams: tio.IOStreams,
		Config:    func() (*config.Config, error) { return cfg, nil },
	})
	require.NoError(t, err)

	out := tio.OutBuf.String()
	assert.Contains(t, out, "dir: /opt/localstack")
	assert.Contains(t, out, "timeout: 3m0s")
	assert.Contains(t, out, "ready_marker: Ready.")
}

func TestShowRun_loadError(t *testing.T) {
	tio := iostreamstest.New()
	cause := errors.New("invalid install.dir")

	err := showRun(context.Background(), &ShowOptions{
		IOStreams: tio.IOStreams,
		Config:    func() (*config.Config, error) { return nil, cause },
	})
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, tio.OutBuf.String())
}
