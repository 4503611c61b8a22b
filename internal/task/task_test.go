package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumsValid(t *testing.T) {
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("done").Valid())
	assert.True(t, CategoryShopping.Valid())
	assert.False(t, Category("").Valid())
}

func TestChangesApplyLeavesUnsetFields(t *testing.T) {
	tk := Task{ID: "a", Title: "keep", Priority: PriorityLow, Status: StatusPending}

	Changes{Status: ptr(StatusCompleted)}.apply(&tk)

	assert.Equal(t, "keep", tk.Title)
	assert.Equal(t, PriorityLow, tk.Priority)
	assert.Equal(t, StatusCompleted, tk.Status)
}
