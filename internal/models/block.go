package models

import "github.com/google/uuid"

// BlockType is the closed set of content units the editor understands.
type BlockType string

const (
	BlockHeading1  BlockType = "heading-1"
	BlockHeading2  BlockType = "heading-2"
	BlockParagraph BlockType = "paragraph"
	BlockQuote     BlockType = "quote"
	BlockCode      BlockType = "code"
	BlockImage     BlockType = "image"
)

// Block is one typed unit of post content. It lives in editor memory and in
// the metadata.blocks snapshot; the derived HTML stays the rendering source
// of truth. Content holds a text/HTML fragment, or a URL for image blocks.
type Block struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
}

// NewBlock returns an empty block of the given type with a fresh id. Ids are
// stable for the lifetime of the block and used for focus tracking.
func NewBlock(t BlockType) Block {
	return Block{ID: uuid.NewString(), Type: t}
}

// ValidBlockType reports whether t belongs to the closed type set.
func ValidBlockType(t BlockType) bool {
	switch t {
	case BlockHeading1, BlockHeading2, BlockParagraph, BlockQuote, BlockCode, BlockImage:
		return true
	}
	return false
}
