package tui

type View int

const (
	ViewNews View = iota
	ViewReader
	ViewBookmarks
	ViewFind
)

func (v View) String() string {
	switch v {
	case ViewNews:
		return "news"
	case ViewReader:
		return "reader"
	case ViewBookmarks:
		return "bookmarks"
	case ViewFind:
		return "find"
	default:
		return "unknown"
	}
}
