package types

import "strconv"

func formatDimensions(w, h int) string {
	return strconv.Itoa(w) + "x" + strconv.Itoa(h)
}
