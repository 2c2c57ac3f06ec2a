package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/storage"
	"github.com/slok/rsbx/internal/storage/memory"
)

func TestResolveSandboxID(t *testing.T) {
	tests := map[string]struct {
		noRepo bool
		ref    string
		expID  string
		expErr error
	}{
		"A record name should resolve to its sandbox id.": {
			ref:   "dev",
			expID: "sb-1",
		},

		"A record id should resolve to itself.": {
			ref:   "sb-1",
			expID: "sb-1",
		},

		"An unknown reference should be used as the sandbox id.": {
			ref:   "sb-remote",
			expID: "sb-remote",
		},

		"Without repository the reference should be used as the sandbox id.": {
			noRepo: true,
			ref:    "dev",
			expID:  "dev",
		},

		"A terminated sandbox should fail.": {
			ref:    "old",
			expErr: model.ErrPrecondition,
		},

		"An empty reference should fail.": {
			ref:    "",
			expErr: model.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			var repo storage.Repository
			if !test.noRepo {
				mem, err := memory.NewRepository(memory.RepositoryConfig{})
				require.NoError(err)
				now := time.Now().UTC()
				require.NoError(mem.CreateSandbox(context.TODO(), model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusRunning, CreatedAt: now}))
				require.NoError(mem.CreateSandbox(context.TODO(), model.SandboxRecord{ID: "sb-2", Name: "old", Status: model.SandboxStatusTerminated, CreatedAt: now, FinishedAt: &now}))
				repo = mem
			}

			id, err := storage.ResolveSandboxID(context.TODO(), repo, test.ref)
			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			assert.NoError(err)
			assert.Equal(test.expID, id)
		})
	}
}

func TestGetSandboxByRef(t *testing.T) {
	mem, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	require.NoError(t, mem.CreateSandbox(context.TODO(), model.SandboxRecord{ID: "sb-1", Name: "dev", Status: model.SandboxStatusRunning, CreatedAt: time.Now()}))

	tests := map[string]struct {
		ref    string
		expID  string
		expErr error
	}{
		"A name should return its record.":  {ref: "dev", expID: "sb-1"},
		"An id should return its record.":   {ref: "sb-1", expID: "sb-1"},
		"An unknown reference should fail.": {ref: "sb-x", expErr: model.ErrNotFound},
		"An empty reference should fail.":   {ref: "", expErr: model.ErrNotValid},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			rec, err := storage.GetSandboxByRef(context.TODO(), mem, test.ref)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expID, rec.ID)
		})
	}
}
