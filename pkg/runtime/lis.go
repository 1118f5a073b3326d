package runtime

// longestIncreasingSubsequence returns the indices of one longest
// strictly increasing subsequence of arr. Entries equal to 0 are
// "unmatched" slots and never selected. On ties between equally long
// subsequences, the lexicographically earliest index set wins, which
// keeps move plans deterministic.
func longestIncreasingSubsequence(arr []int) []int {
	p := make([]int, len(arr))
	result := []int{}
	for i, v := range arr {
		if v == 0 {
			continue
		}
		if len(result) == 0 || arr[result[len(result)-1]] < v {
			if len(result) > 0 {
				p[i] = result[len(result)-1]
			} else {
				p[i] = -1
			}
			result = append(result, i)
			continue
		}
		// Binary search for the first tail >= v.
		lo, hi := 0, len(result)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if arr[result[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if arr[result[lo]] > v {
			if lo > 0 {
				p[i] = result[lo-1]
			} else {
				p[i] = -1
			}
			result[lo] = i
		}
	}
	// Rebuild the chain from the predecessor links.
	out := make([]int, len(result))
	if len(result) == 0 {
		return out
	}
	i := len(result) - 1
	cur := result[i]
	for i >= 0 {
		out[i] = cur
		cur = p[cur]
		i--
	}
	return out
}
