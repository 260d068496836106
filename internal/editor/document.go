package editor

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vjbravo123/portfolio-cms/internal/models"
)

var (
	// ErrNoFocus is returned when a formatting command arrives with no
	// focused block.
	ErrNoFocus = errors.New("editor: no block focused")
	// ErrNoSelection is returned when a formatting or link command arrives
	// without a non-collapsed text selection. Callers surface it as a
	// notice, not a failure.
	ErrNoSelection = errors.New("editor: highlight text first")
)

// NewBlockID returns a fresh stable block id.
func NewBlockID() string {
	return uuid.NewString()
}

// Document is the in-memory block sequence for one authoring session. It is
// never empty: an empty post is a single empty paragraph. At most one block
// is focused at a time, tracked by id so focus survives reordering.
type Document struct {
	blocks    []models.Block
	focusedID string
}

// NewDocument wraps an existing block sequence, seeding one empty paragraph
// when blocks is empty.
func NewDocument(blocks []models.Block) *Document {
	d := &Document{blocks: append([]models.Block(nil), blocks...)}
	if len(d.blocks) == 0 {
		d.blocks = []models.Block{models.NewBlock(models.BlockParagraph)}
	}
	return d
}

// Blocks returns a copy of the current block sequence.
func (d *Document) Blocks() []models.Block {
	return append([]models.Block(nil), d.blocks...)
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.blocks)
}

// Focus marks the block with the given id as focused.
func (d *Document) Focus(id string) {
	d.focusedID = id
}

// Focused returns the focused block id, or "".
func (d *Document) Focused() string {
	return d.focusedID
}

func (d *Document) indexOf(id string) int {
	for i, b := range d.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// InsertBlockAfter creates a new block of the given type immediately after
// afterID (or at the end when afterID is unknown or empty), assigns it a
// fresh id and moves focus to it.
func (d *Document) InsertBlockAfter(afterID string, t models.BlockType) models.Block {
	block := models.NewBlock(t)
	at := len(d.blocks)
	if i := d.indexOf(afterID); i >= 0 {
		at = i + 1
	}
	d.blocks = append(d.blocks, models.Block{})
	copy(d.blocks[at+1:], d.blocks[at:])
	d.blocks[at] = block
	d.focusedID = block.ID
	return block
}

// UpdateContent replaces one block's content. It is the only mutation path
// triggered by keystrokes and never touches sibling blocks.
func (d *Document) UpdateContent(id, content string) bool {
	i := d.indexOf(id)
	if i < 0 {
		return false
	}
	d.blocks[i].Content = content
	return true
}

// Delete removes the block with the given id. Deleting the only remaining
// block clears its content instead, which is where the never-empty invariant
// is enforced.
func (d *Document) Delete(id string) {
	i := d.indexOf(id)
	if i < 0 {
		return
	}
	if len(d.blocks) <= 1 {
		d.blocks[i].Content = ""
		return
	}
	d.blocks = append(d.blocks[:i], d.blocks[i+1:]...)
	if d.focusedID == id {
		if i > 0 {
			d.focusedID = d.blocks[i-1].ID
		} else {
			d.focusedID = d.blocks[0].ID
		}
	}
}

// HandleEnter implements the keyboard contract for Enter: without Shift it
// inserts a paragraph after the focused block and suppresses the native
// newline. The returned bool reports whether the key was consumed.
func (d *Document) HandleEnter(shift bool) (models.Block, bool) {
	if shift {
		return models.Block{}, false
	}
	return d.InsertBlockAfter(d.focusedID, models.BlockParagraph), true
}

// HandleBackspace implements the keyboard contract for Backspace: on an
// empty focused block it deletes the block and consumes the key.
func (d *Document) HandleBackspace() bool {
	i := d.indexOf(d.focusedID)
	if i < 0 || d.blocks[i].Content != "" {
		return false
	}
	d.Delete(d.focusedID)
	return true
}

// ApplyFormat runs a formatting command against the active selection inside
// the focused block, then re-syncs the block's content from the surface.
// The surface is momentarily the source of truth during the gesture.
func (d *Document) ApplyFormat(s Surface, cmd Command) error {
	if d.focusedID == "" {
		return ErrNoFocus
	}
	if _, ok := s.Selection(); !ok {
		return ErrNoSelection
	}
	if err := s.Exec(cmd, ""); err != nil {
		return err
	}
	return d.syncFromSurface(s, d.focusedID)
}

// BeginLink captures the current selection before a link-URL prompt opens,
// since the prompt itself may disturb the live selection. It fails with
// ErrNoSelection when the selection is collapsed.
func (d *Document) BeginLink(s Surface) (Selection, error) {
	if d.focusedID == "" {
		return Selection{}, ErrNoFocus
	}
	sel, ok := s.Selection()
	if !ok {
		return Selection{}, ErrNoSelection
	}
	return sel, nil
}

// ApplyLink restores the captured selection and wraps it in a link.
func (d *Document) ApplyLink(s Surface, sel Selection, url string) error {
	if url == "" {
		return nil
	}
	if err := s.RestoreSelection(sel); err != nil {
		return err
	}
	if err := s.Exec(CmdCreateLink, url); err != nil {
		return err
	}
	return d.syncFromSurface(s, sel.BlockID)
}

func (d *Document) syncFromSurface(s Surface, blockID string) error {
	content, err := s.Content(blockID)
	if err != nil {
		return err
	}
	d.UpdateContent(blockID, content)
	return nil
}
