package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGradeAssignmentObservesDurationPerOutcome(t *testing.T) {
	m := NewMetricsService()
	m.RecordGradeAssignment(GradeOutcomeRejected, 2*time.Millisecond)
	m.RecordGradeAssignment(GradeOutcomeCreated, 40*time.Millisecond)
	m.RecordGradeAssignment(GradeOutcomeCreated, 30*time.Millisecond)

	families, err := m.registry.Gather()
	require.NoError(t, err)

	counts := map[string]uint64{}
	for _, family := range families {
		if family.GetName() != "grade_assignment_duration_seconds" {
			continue
		}
		assert.Contains(t, family.GetHelp(), "including requests rejected before the transaction")
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" {
					counts[label.GetValue()] = metric.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	assert.Equal(t, map[string]uint64{GradeOutcomeRejected: 1, GradeOutcomeCreated: 2}, counts)
	assert.Equal(t, uint64(3), m.Snapshot().GradeAssignments)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordGradeAssignment(GradeOutcomeFailed, time.Millisecond)
		m.RecordDeactivation(EntityStudent)
	})
}
