package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "in_progress", "resolved", "rejected"} {
		status, ok := ParseStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, Status(s), status)
	}

	_, ok := ParseStatus("closed")
	assert.False(t, ok)

	_, ok = ParseStatus("Pending")
	assert.False(t, ok, "status names are case sensitive")
}

func TestStatuses_ReturnsCopy(t *testing.T) {
	list := Statuses()
	list[0] = "mutated"

	assert.Equal(t, StatusPending, Statuses()[0])
	assert.Equal(t, InitialStatus, StatusPending)
}

func TestIncidentFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, IncidentFilter{Page: 1, PerPage: 10}.Offset())
	assert.Equal(t, 20, IncidentFilter{Page: 3, PerPage: 10}.Offset())
}

func TestIncidentPatch_IsEmpty(t *testing.T) {
	assert.True(t, IncidentPatch{}.IsEmpty())

	title := "x"
	assert.False(t, IncidentPatch{Title: &title}.IsEmpty())
}
