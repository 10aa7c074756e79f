package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftbank/core/factory"
	"github.com/kilianp07/liftbank/core/model"
)

func statuses(floors []int, busy ...int) []model.CarStatus {
	out := make([]model.CarStatus, len(floors))
	for i, f := range floors {
		out[i] = model.CarStatus{ID: i + 1, Floor: f}
	}
	for _, b := range busy {
		out[b].Busy = true
	}
	return out
}

func TestNearestIdle(t *testing.T) {
	call := model.Call{Floor: 4, Direction: model.Up}
	tests := []struct {
		name   string
		cars   []model.CarStatus
		want   int
		wantOK bool
	}{
		{"closest wins", statuses([]int{1, 5}), 1, true},
		{"tie goes to lowest id", statuses([]int{3, 5}), 0, true},
		{"busy cars skipped", statuses([]int{4, 1}, 0), 1, true},
		{"all busy", statuses([]int{1, 2}, 0, 1), -1, false},
		{"no cars", nil, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NearestIdle{}.Select(tt.cars, call)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFirstIdle(t *testing.T) {
	call := model.Call{Floor: 9, Direction: model.Down}
	idx, ok := FirstIdle{}.Select(statuses([]int{1, 9, 9}, 0), call)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = FirstIdle{}.Select(statuses([]int{1}, 0), call)
	assert.False(t, ok)
}

func TestNewSelector(t *testing.T) {
	sel, err := NewSelector(factory.ModuleConfig{})
	require.NoError(t, err)
	assert.IsType(t, NearestIdle{}, sel)

	sel, err = NewSelector(factory.ModuleConfig{Type: "nearest"})
	require.NoError(t, err)
	assert.IsType(t, NearestIdle{}, sel)

	sel, err = NewSelector(factory.ModuleConfig{Type: "first_idle"})
	require.NoError(t, err)
	assert.IsType(t, FirstIdle{}, sel)

	_, err = NewSelector(factory.ModuleConfig{Type: "zoned"})
	assert.ErrorContains(t, err, "zoned")
}

func TestRegisterSelectorDuplicate(t *testing.T) {
	err := RegisterSelector("nearest", func(map[string]any) (CarSelector, error) { return FirstIdle{}, nil })
	assert.Error(t, err)
}
