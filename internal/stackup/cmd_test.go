package stackup

import (
	"errors"
	"fmt"
	"testing"

	"github.com/schmitthub/stackup/internal/cmdutil"
	"github.com/schmitthub/stackup/internal/config"
	"github.com/schmitthub/stackup/internal/iostreams/iostreamstest"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestHandleError(t *testing.T) {
	cmd := &cobra.Command{Use: "up"}
	root := &cobra.Command{Use: "stackup"}
	root.AddCommand(cmd)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
		wantHint bool
	}{
		{name: "nil", err: nil, wantCode: exitOk},
		{name: "exit error", err: fmt.Errorf("wrapped: %w", &cmdutil.ExitError{Code: 7}), wantCode: 7},
		{name: "silent", err: cmdutil.SilentError, wantCode: exitError},
		{
			name:     "flag error",
			err:      cmdutil.FlagErrorf("--timeout must not be negative"),
			wantCode: exitUsage,
			wantErr:  "[error] --timeout must not be negative\n",
			wantHint: true,
		},
		{
			name:     "unknown command",
			err:      errors.New(`unknown command "dwon" for "stackup"`),
			wantCode: exitUsage,
			wantErr:  `[error] unknown command "dwon" for "stackup"` + "\n",
			wantHint: true,
		},
		{
			name: "invalid config",
			err: &config.MultiValidationError{Errors: []error{
				&config.ValidationError{Field: "install.dir", Message: "must be an absolute path", Value: "rel"},
			}},
			wantCode: exitDataErr,
			wantErr:  "[error] invalid install.dir: must be an absolute path (got \"rel\")\n",
		},
		{
			name:     "generic",
			err:      errors.New("emulator startup failed"),
			wantCode: exitError,
			wantErr:  "[error] emulator startup failed\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tio := iostreamstest.New()

			code := handleError(tio.IOStreams, cmd, tt.err)

			assert.Equal(t, tt.wantCode, code)
			out := tio.ErrBuf.String()
			if tt.wantErr == "" {
				assert.Empty(t, out)
				return
			}
			assert.Contains(t, out, tt.wantErr)
			if tt.wantHint {
				assert.Contains(t, out, "Run 'stackup up --help' for more information.")
			} else {
				assert.NotContains(t, out, "--help")
			}
		})
	}
}
