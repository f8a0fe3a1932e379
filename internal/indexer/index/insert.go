package index

// InsertLast moves the last element of occs to its place in the sorted prefix
// occs[:len(occs)-1] and returns the resulting list. The new occurrence goes
// after every existing occurrence with a frequency greater than or equal to
// its own, so ties keep arrival order. Only a strictly greater frequency
// moves the search left; moving left on equal would put the newcomer ahead
// of its ties.
//
// visit, when non-nil, is called with each midpoint the binary search checks.
// Lists with fewer than two elements are returned as is.
func InsertLast(occs OccurrenceList, visit func(mid int)) OccurrenceList {
	n := len(occs)
	if n < 2 {
		return occs
	}
	item := occs[n-1]
	front, end := 0, n-2
	for front <= end {
		mid := (front + end) / 2
		if visit != nil {
			visit(mid)
		}
		if item.Frequency > occs[mid].Frequency {
			end = mid - 1
		} else {
			front = mid + 1
		}
	}
	copy(occs[front+1:], occs[front:n-1])
	occs[front] = item
	return occs
}

// TraceInsertLast runs InsertLast and returns the visited midpoints, or nil
// when the list has a single element.
func TraceInsertLast(occs OccurrenceList) (OccurrenceList, []int) {
	if len(occs) < 2 {
		return occs, nil
	}
	mids := make([]int, 0, 8)
	occs = InsertLast(occs, func(mid int) {
		mids = append(mids, mid)
	})
	return occs, mids
}
