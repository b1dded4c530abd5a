package search

import "math"

// intersectWithSkips merges two sorted document-ID lists using skip
// pointers. On a mismatch the trailing cursor attempts a jump of
// floor(sqrt(len)) positions, taken only when the skipped-to element does
// not overshoot the other cursor's value. The result is identical to a
// naive linear merge for all inputs; the skips only reduce comparisons on
// long lists.
func intersectWithSkips(list1, list2 []string) []string {
	len1, len2 := len(list1), len(list2)
	skip1 := int(math.Sqrt(float64(len1)))
	if skip1 < 1 {
		skip1 = 1
	}
	skip2 := int(math.Sqrt(float64(len2)))
	if skip2 < 1 {
		skip2 = 1
	}

	var out []string
	i, j := 0, 0
	for i < len1 && j < len2 {
		switch {
		case list1[i] == list2[j]:
			out = append(out, list1[i])
			i++
			j++
		case list1[i] < list2[j]:
			if next := i + skip1; next < len1 && list1[next] <= list2[j] {
				i = next
			} else {
				i++
			}
		default:
			if next := j + skip2; next < len2 && list2[next] <= list1[i] {
				j = next
			} else {
				j++
			}
		}
	}
	return out
}
