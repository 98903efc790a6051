package model

// DeleteResult records the outcome of one message deletion within a bulk
// delete batch. The batch is best-effort: individual failures are kept
// observable here instead of aborting the batch.
type DeleteResult struct {
	Timestamp string
	Err       error
}

// OK reports whether the deletion succeeded
func (x DeleteResult) OK() bool {
	return x.Err == nil
}

// CountDeleted returns how many deletions in the batch succeeded
func CountDeleted(results []DeleteResult) int {
	var n int
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}
