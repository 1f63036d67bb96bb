package analytics

import "fmt"

// Recommend names the group with the highest count. Ties go to the group that comes
// first. A zero maximum still yields a recommendation; an empty groups slice or an
// unknown axis yields none.
func Recommend(groups []GroupedCount, filterValue string, axis Axis) []string {
	if len(groups) == 0 || !axis.Valid() {
		return []string{}
	}

	best := 0
	for i := 1; i < len(groups); i++ {
		if groups[i].Count > groups[best].Count {
			best = i
		}
	}

	return []string{recommendationText(axis, filterValue, groups[best].Label)}
}

func recommendationText(axis Axis, filterValue, label string) string {
	if axis == AxisAnimal {
		return fmt.Sprintf("Based on the selection '%s', the best camera is '%s'.", filterValue, label)
	}
	return fmt.Sprintf("Based on the selection '%s', the most frequent animal is '%s'.", filterValue, label)
}
