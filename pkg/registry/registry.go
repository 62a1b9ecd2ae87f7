// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

var (
	ErrActivityExists   = errors.New("activity already exists")
	ErrActivityNotFound = errors.New("activity not found")
	ErrUnknownField     = errors.New("unknown field")
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// New returns an empty registry stamped with now.
func New(now time.Time) *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: now.UTC().Format(time.RFC3339),
		Activities:  []Activity{},
	}
}

// FindByTaskType returns the activity a worker subscribes to.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

func (r *ActivityRegistry) Find(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

func (r *ActivityRegistry) Add(activity Activity, now time.Time) error {
	if _, exists := r.Find(activity.ID); exists {
		return fmt.Errorf("%w: %s", ErrActivityExists, activity.ID)
	}
	r.Activities = append(r.Activities, activity)
	r.LastUpdated = now.UTC().Format(time.RFC3339)
	return nil
}

// Update sets one scalar field of an activity.
func (r *ActivityRegistry) Update(id, field, value string, now time.Time) error {
	activity, ok := r.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}

	switch field {
	case "status":
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	r.LastUpdated = now.UTC().Format(time.RFC3339)
	return nil
}

// Validate checks required fields, uniqueness and that every schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	var errs []error
	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			errs = append(errs, errors.New("activity missing required field: ID"))
			continue
		}
		if ids[activity.ID] {
			errs = append(errs, fmt.Errorf("duplicate activity ID: %s", activity.ID))
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: DisplayName", activity.ID))
		}
		if activity.Category == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: Category", activity.ID))
		}
		if activity.TaskType == "" {
			errs = append(errs, fmt.Errorf("activity %s missing required field: TaskType", activity.ID))
		} else if taskTypes[activity.TaskType] {
			errs = append(errs, fmt.Errorf("duplicate task type: %s", activity.TaskType))
		}
		taskTypes[activity.TaskType] = true

		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("activity %s has invalid timeout %q", activity.ID, activity.Timeout))
			}
		}
		if err := compileSchema(activity.InputSchema); err != nil {
			errs = append(errs, fmt.Errorf("activity %s inputSchema: %w", activity.ID, err))
		}
		if err := compileSchema(activity.OutputSchema); err != nil {
			errs = append(errs, fmt.Errorf("activity %s outputSchema: %w", activity.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// TimeoutDuration parses Timeout, returning fallback when it is empty or invalid.
func (a *Activity) TimeoutDuration(fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func compileSchema(schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	_, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	return err
}
