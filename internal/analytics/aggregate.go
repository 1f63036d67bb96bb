package analytics

// Aggregate filters uploads by filterValue and counts them per group.
//
// With AxisAnimal, uploads whose Animal equals filterValue are counted per camera. One
// group is returned for every distinct pin camera ID, in first-seen pin order, including
// cameras with no matching uploads.
//
// With AxisCamera, uploads whose CameraID equals filterValue are counted per animal.
// Groups appear in the order their animal first occurs among the filtered uploads.
//
// The axis is checked before the filter. The returned slice is never nil.
func Aggregate(uploads []UploadRecord, pins []PinRecord, axis Axis, filterValue string) ([]GroupedCount, error) {
	if !axis.Valid() {
		return nil, invalidAxisError(axis)
	}
	if filterValue == "" {
		return nil, invalidFilterError(axis)
	}

	if axis == AxisAnimal {
		return countByCamera(uploads, pins, filterValue), nil
	}
	return countByAnimal(uploads, filterValue), nil
}

func countByCamera(uploads []UploadRecord, pins []PinRecord, animal string) []GroupedCount {
	groups := make([]GroupedCount, 0, len(pins))
	index := make(map[string]int, len(pins))

	for i := range pins {
		cameraID := pins[i].CameraID
		if _, seen := index[cameraID]; seen {
			continue
		}
		index[cameraID] = len(groups)
		groups = append(groups, GroupedCount{Label: cameraID})
	}

	for i := range uploads {
		if uploads[i].Animal != animal {
			continue
		}
		// uploads from unpinned cameras are not reported
		if pos, ok := index[uploads[i].CameraID]; ok {
			groups[pos].Count++
		}
	}

	return groups
}

func countByAnimal(uploads []UploadRecord, cameraID string) []GroupedCount {
	groups := make([]GroupedCount, 0)
	index := make(map[string]int)

	for i := range uploads {
		if uploads[i].CameraID != cameraID {
			continue
		}
		animal := uploads[i].Animal
		pos, seen := index[animal]
		if !seen {
			pos = len(groups)
			index[animal] = pos
			groups = append(groups, GroupedCount{Label: animal})
		}
		groups[pos].Count++
	}

	return groups
}
