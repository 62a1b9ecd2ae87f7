// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registryNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func createTestActivity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: "Activity " + id,
		Category:    "search",
		TaskType:    id,
		Timeout:     "30s",
		InputSchema: map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"query"},
		},
	}
}

func TestLoadShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	activity, ok := reg.FindByTaskType("realtime-search")
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, activity.TimeoutDuration(time.Minute))
	assert.Contains(t, activity.ErrorCodes, "INVALID_SEARCH_INPUT")
	assert.NotEmpty(t, activity.InputSchema)
}

func TestAddUpdateSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")

	reg := New(registryNow)
	require.NoError(t, reg.Add(createTestActivity("realtime-search"), registryNow))
	assert.ErrorIs(t, reg.Add(createTestActivity("realtime-search"), registryNow), ErrActivityExists)

	later := registryNow.Add(time.Hour)
	require.NoError(t, reg.Update("realtime-search", "status", "verified", later))
	require.NoError(t, reg.Update("realtime-search", "retries", "5", later))
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	activity, ok := loaded.Find("realtime-search")
	require.True(t, ok)
	assert.Equal(t, "verified", activity.ImplementationStatus)
	assert.Equal(t, 5, activity.Retries)
	assert.Equal(t, "2025-06-15T13:00:00Z", loaded.LastUpdated)
}

func TestUpdate_Errors(t *testing.T) {
	reg := New(registryNow)
	require.NoError(t, reg.Add(createTestActivity("a"), registryNow))

	tests := []struct {
		name  string
		id    string
		field string
		value string
		want  error
	}{
		{name: "missing activity", id: "b", field: "status", value: "x", want: ErrActivityNotFound},
		{name: "unknown field", id: "a", field: "owner", value: "x", want: ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, reg.Update(tt.id, tt.field, tt.value, registryNow), tt.want)
		})
	}

	assert.Error(t, reg.Update("a", "retries", "many", registryNow))
	assert.Error(t, reg.Update("a", "timeout", "soon", registryNow))
}

func TestValidate(t *testing.T) {
	badSchema := createTestActivity("bad-schema")
	badSchema.OutputSchema = map[string]interface{}{"type": 42}

	noTaskType := createTestActivity("no-task")
	noTaskType.TaskType = ""

	badTimeout := createTestActivity("bad-timeout")
	badTimeout.Timeout = "thirty"

	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{name: "valid", activities: []Activity{createTestActivity("a"), createTestActivity("b")}},
		{name: "empty", activities: nil, wantErr: "no activities"},
		{name: "duplicate id", activities: []Activity{createTestActivity("a"), createTestActivity("a")}, wantErr: "duplicate activity ID: a"},
		{name: "bad schema", activities: []Activity{badSchema}, wantErr: "bad-schema outputSchema"},
		{name: "missing task type", activities: []Activity{noTaskType}, wantErr: "missing required field: TaskType"},
		{name: "bad timeout", activities: []Activity{badTimeout}, wantErr: "invalid timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: tt.activities}
			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, os.IsNotExist(err))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err = LoadRegistry(path)
	assert.ErrorContains(t, err, "parse registry")
}
