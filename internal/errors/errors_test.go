package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastPathNoHooks(t *testing.T) {
	ClearErrorHooks()

	ee := New(fmt.Errorf("test error")).Build()

	assert.Equal(t, "test error", ee.Error())
	assert.Equal(t, ComponentUnknown, ee.GetComponent())
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestBuilderKeepsExplicitValues(t *testing.T) {
	ClearErrorHooks()

	base := NewStd("window insert failed")
	ee := New(base).
		Component("datastore").
		Category(CategoryDatabase).
		Priority(PriorityHigh).
		Context("operation", "insert_window").
		Build()

	assert.Equal(t, "datastore", ee.GetComponent())
	assert.Equal(t, CategoryDatabase, ee.Category)
	assert.Equal(t, PriorityHigh, ee.GetPriority())
	assert.Equal(t, "insert_window", ee.GetContext()["operation"])
	assert.True(t, Is(ee, base), "wrapped error must stay reachable")
	assert.True(t, IsCategory(ee, CategoryDatabase))
	assert.False(t, IsNotFound(ee))
}

func TestInvalidPriorityFallsBackToMedium(t *testing.T) {
	ee := New(NewStd("x")).Priority("urgent").Build()
	assert.Equal(t, PriorityMedium, ee.GetPriority())
}

func TestHooksReceiveDetectedCategory(t *testing.T) {
	t.Cleanup(ClearErrorHooks)

	var seen []*EnhancedError
	AddErrorHook(func(ee *EnhancedError) { seen = append(seen, ee) })

	ee := Newf("survey %d not found", 7).Build()

	require.Len(t, seen, 1)
	assert.Same(t, ee, seen[0])
	assert.Equal(t, CategoryNotFound, ee.Category)
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		component string
		want      ErrorCategory
	}{
		{"not found message", NewStd("aru not found"), "", CategoryNotFound},
		{"invalid message", NewStd("invalid model selector"), "", CategoryValidation},
		{"datastore component", NewStd("disk I/O"), "datastore", CategoryDatabase},
		{"calibration component", NewStd("singular"), "calibration", CategoryCalibration},
		{"enhanced passthrough", &EnhancedError{Err: NewStd("x"), Category: CategoryState}, "", CategoryState},
		{"fallback", NewStd("boom"), "", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectCategory(tt.err, tt.component))
		})
	}
}
