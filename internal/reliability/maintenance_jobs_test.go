package reliability

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/cartera/internal/database"
	testingpkg "github.com/aristath/cartera/internal/testing"
)

func newMaintenanceJob(t *testing.T) *MaintenanceJob {
	t.Helper()
	var dbs []*database.DB
	for _, name := range []string{database.NameLedger, database.NameHistory} {
		db, cleanup := testingpkg.NewTestDB(t, name)
		t.Cleanup(cleanup)
		dbs = append(dbs, db)
	}
	return NewMaintenanceJob(dbs, t.TempDir(), zerolog.Nop())
}

func TestMaintenanceJob_Run(t *testing.T) {
	tests := []struct {
		name    string
		free    uint64
		usage   error
		wantErr bool
	}{
		{"plenty of space", 50 << 30, nil, false},
		{"low space only warns", 1 << 30, nil, false},
		{"critical space fails", 100 << 20, nil, true},
		{"unreadable usage is ignored", 0, errors.New("statfs failed"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := newMaintenanceJob(t)
			job.SetDiskUsage(func(string) (uint64, error) { return tt.free, tt.usage })

			err := job.Run()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaintenanceJob_ClosedDatabaseFails(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, database.NamePortfolio)
	t.Cleanup(cleanup)
	require.NoError(t, db.Close())

	job := NewMaintenanceJob([]*database.DB{db}, t.TempDir(), zerolog.Nop())
	job.SetDiskUsage(func(string) (uint64, error) { return 50 << 30, nil })
	assert.Error(t, job.Run())
	assert.Equal(t, "maintenance", job.Name())
}
