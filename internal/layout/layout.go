// Package layout holds grid arithmetic shared by the dashboard views.
package layout

// Columns returns how many tiles of tileWidth fit across width, never fewer
// than one.
func Columns(width, tileWidth int) int {
	if tileWidth <= 0 {
		return 1
	}
	return max(1, width/tileWidth)
}

// Rows returns the number of rows needed to lay out n tiles in cols columns.
func Rows(n, cols int) int {
	if n <= 0 {
		return 0
	}
	cols = max(1, cols)
	return (n + cols - 1) / cols
}
