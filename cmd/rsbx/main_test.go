package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/rsbx/internal/model"
)

func TestRun(t *testing.T) {
	tests := map[string]struct {
		args     []string
		expOut   string
		expJSON  bool
		expErr   bool
		expErrIs error
	}{
		"Listing an empty registry in JSON should print an empty list.": {
			args:    []string{"sandbox", "list", "--format", "json"},
			expOut:  "[]",
			expJSON: true,
		},
		"Listing an empty registry in table format should print nothing.": {
			args:   []string{"sandbox", "ls"},
			expOut: "",
		},
		"An invalid status filter should fail.": {
			args:     []string{"sandbox", "list", "--status", "stopped"},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
		"Commands that call the service without a token should fail.": {
			args:     []string{"sandbox", "status", "my-sandbox"},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
		"Unknown commands should fail.": {
			args:   []string{"snapshot", "list"},
			expErr: true,
		},
		"Copying between two sandboxes should fail.": {
			args:     []string{"cp", "sb-1:/a", "sb-2:/b"},
			expErr:   true,
			expErrIs: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			t.Setenv("RSBX_TOKEN_ID", "")
			t.Setenv("RSBX_TOKEN_SECRET", "")
			t.Setenv("RSBX_PROFILE", "")

			dir := t.TempDir()
			args := []string{
				"rsbx",
				"--no-log",
				"--config", filepath.Join(dir, "missing.yaml"),
				"--db-path", filepath.Join(dir, "rsbx.db"),
			}
			args = append(args, test.args...)

			var stdout, stderr bytes.Buffer
			err := Run(context.Background(), args, &bytes.Buffer{}, &stdout, &stderr)

			if test.expErr {
				require.Error(err)
				if test.expErrIs != nil {
					assert.ErrorIs(err, test.expErrIs)
				}
				return
			}
			require.NoError(err)

			if test.expJSON {
				assert.JSONEq(test.expOut, stdout.String())
			} else {
				assert.Equal(test.expOut, stdout.String())
			}
		})
	}
}
