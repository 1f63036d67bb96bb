package analytics

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		groups []GroupedCount
		filter string
		axis   Axis
		want   []string
	}{
		{
			name:   "best camera",
			groups: []GroupedCount{{Label: "cam1", Count: 2}, {Label: "cam2", Count: 0}},
			filter: "deer",
			axis:   AxisAnimal,
			want:   []string{"Based on the selection 'deer', the best camera is 'cam1'."},
		},
		{
			name:   "most frequent animal",
			groups: []GroupedCount{{Label: "deer", Count: 2}},
			filter: "cam1",
			axis:   AxisCamera,
			want:   []string{"Based on the selection 'cam1', the most frequent animal is 'deer'."},
		},
		{
			name:   "tie goes to first group",
			groups: []GroupedCount{{Label: "fox", Count: 3}, {Label: "deer", Count: 3}},
			filter: "cam1",
			axis:   AxisCamera,
			want:   []string{"Based on the selection 'cam1', the most frequent animal is 'fox'."},
		},
		{
			name:   "later maximum wins",
			groups: []GroupedCount{{Label: "cam1", Count: 1}, {Label: "cam2", Count: 4}, {Label: "cam3", Count: 4}},
			filter: "lynx",
			axis:   AxisAnimal,
			want:   []string{"Based on the selection 'lynx', the best camera is 'cam2'."},
		},
		{
			name:   "all zero still recommends the first camera",
			groups: []GroupedCount{{Label: "cam1", Count: 0}, {Label: "cam2", Count: 0}},
			filter: "wolf",
			axis:   AxisAnimal,
			want:   []string{"Based on the selection 'wolf', the best camera is 'cam1'."},
		},
		{
			name:   "empty groups",
			groups: []GroupedCount{},
			filter: "deer",
			axis:   AxisAnimal,
			want:   []string{},
		},
		{
			name:   "nil groups",
			filter: "deer",
			axis:   AxisCamera,
			want:   []string{},
		},
		{
			name:   "unknown axis",
			groups: []GroupedCount{{Label: "cam1", Count: 1}},
			filter: "deer",
			axis:   Axis("date"),
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Recommend(tt.groups, tt.filter, tt.axis)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommend_WinnerHasMaximumCount(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	const prefix = "Based on the selection 'x', the best camera is '"

	for range 300 {
		groups := make([]GroupedCount, r.IntN(10))
		for i := range groups {
			groups[i] = GroupedCount{Label: "cam" + string(rune('a'+i)), Count: r.IntN(5)}
		}

		got := Recommend(groups, "x", AxisAnimal)
		if len(groups) == 0 {
			assert.Empty(t, got)
			continue
		}
		require.Len(t, got, 1)

		label := strings.TrimSuffix(strings.TrimPrefix(got[0], prefix), "'.")
		idx := slices.IndexFunc(groups, func(g GroupedCount) bool { return g.Label == label })
		require.GreaterOrEqual(t, idx, 0, "recommended label %q must be a group", label)

		maxCount := slices.MaxFunc(groups, func(a, b GroupedCount) int { return a.Count - b.Count }).Count
		assert.Equal(t, maxCount, groups[idx].Count)
		for _, g := range groups[:idx] {
			assert.Less(t, g.Count, maxCount, "no earlier group reaches the maximum")
		}
	}
}
