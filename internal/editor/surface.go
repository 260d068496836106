package editor

import (
	"errors"
	"fmt"
)

// Command is a formatting command applied to the active selection.
type Command string

const (
	CmdBold       Command = "bold"
	CmdItalic     Command = "italic"
	CmdCreateLink Command = "createLink"
)

// Selection is a captured text range inside one block's editable region.
type Selection struct {
	BlockID string
	Start   int
	End     int
	Text    string
}

// Surface abstracts the native rich-text editing primitive (browser
// contenteditable, or the plain-text fallback below). The document stays
// decoupled from it so the model and codec are testable without a DOM.
type Surface interface {
	// Selection returns the current selection; ok is false when there is
	// no selection or it is collapsed.
	Selection() (sel Selection, ok bool)
	// RestoreSelection re-activates a previously captured selection.
	RestoreSelection(sel Selection) error
	// Exec applies a formatting command to the active selection.
	Exec(cmd Command, arg string) error
	// Content returns the block's content after an edit gesture, for
	// syncing back into the document.
	Content(blockID string) (string, error)
}

// TextSurface is the plain-text Surface used outside a browser: block
// contents live in a map and selections are rune offsets. Formatting wraps
// the selected range in the corresponding HTML tags.
type TextSurface struct {
	contents map[string]string
	sel      *Selection
}

func NewTextSurface() *TextSurface {
	return &TextSurface{contents: make(map[string]string)}
}

// SetContent seeds or replaces one block's surface content.
func (t *TextSurface) SetContent(blockID, content string) {
	t.contents[blockID] = content
}

// Select marks [start, end) of the block's content as the active selection.
func (t *TextSurface) Select(blockID string, start, end int) error {
	content, ok := t.contents[blockID]
	if !ok {
		return fmt.Errorf("surface: unknown block %s", blockID)
	}
	rs := []rune(content)
	if start < 0 || end > len(rs) || start > end {
		return errors.New("surface: selection out of range")
	}
	t.sel = &Selection{BlockID: blockID, Start: start, End: end, Text: string(rs[start:end])}
	return nil
}

// ClearSelection collapses the selection, as opening a prompt would.
func (t *TextSurface) ClearSelection() {
	t.sel = nil
}

func (t *TextSurface) Selection() (Selection, bool) {
	if t.sel == nil || t.sel.Start == t.sel.End {
		return Selection{}, false
	}
	return *t.sel, true
}

func (t *TextSurface) RestoreSelection(sel Selection) error {
	return t.Select(sel.BlockID, sel.Start, sel.End)
}

func (t *TextSurface) Exec(cmd Command, arg string) error {
	if t.sel == nil {
		return ErrNoSelection
	}
	var openTag, closeTag string
	switch cmd {
	case CmdBold:
		openTag, closeTag = "<b>", "</b>"
	case CmdItalic:
		openTag, closeTag = "<i>", "</i>"
	case CmdCreateLink:
		openTag, closeTag = fmt.Sprintf(`<a href="%s">`, arg), "</a>"
	default:
		return fmt.Errorf("surface: unknown command %q", cmd)
	}

	rs := []rune(t.contents[t.sel.BlockID])
	wrapped := string(rs[:t.sel.Start]) + openTag + string(rs[t.sel.Start:t.sel.End]) + closeTag + string(rs[t.sel.End:])
	t.contents[t.sel.BlockID] = wrapped
	t.sel = nil
	return nil
}

func (t *TextSurface) Content(blockID string) (string, error) {
	content, ok := t.contents[blockID]
	if !ok {
		return "", fmt.Errorf("surface: unknown block %s", blockID)
	}
	return content, nil
}
