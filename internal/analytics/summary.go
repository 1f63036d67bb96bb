package analytics

// GetUploadSummary runs Aggregate and then Recommend with the same axis and filter.
// Errors come only from Aggregate.
func GetUploadSummary(uploads []UploadRecord, pins []PinRecord, axis Axis, filterValue string) (Summary, error) {
	groups, err := Aggregate(uploads, pins, axis, filterValue)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Groups:          groups,
		Recommendations: Recommend(groups, filterValue, axis),
	}, nil
}
