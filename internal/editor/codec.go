// Package editor holds the block-based authoring pipeline: the block
// document, the HTML codec, the editing surface adapter and the session
// controller that ties them to the blog service.
package editor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vjbravo123/portfolio-cms/internal/models"
)

// EncodeBlocks renders an ordered block sequence to the canonical HTML
// string. Each block type maps to exactly one wrapping tag and blocks are
// joined with no separator, so encoding is deterministic. Code content is
// escaped for angle brackets only.
func EncodeBlocks(blocks []models.Block) string {
	var b strings.Builder
	for _, block := range blocks {
		switch block.Type {
		case models.BlockHeading1:
			b.WriteString("<h1>" + block.Content + "</h1>")
		case models.BlockHeading2:
			b.WriteString("<h2>" + block.Content + "</h2>")
		case models.BlockParagraph:
			b.WriteString("<p>" + block.Content + "</p>")
		case models.BlockQuote:
			b.WriteString("<blockquote>" + block.Content + "</blockquote>")
		case models.BlockCode:
			escaped := strings.ReplaceAll(block.Content, "<", "&lt;")
			escaped = strings.ReplaceAll(escaped, ">", "&gt;")
			b.WriteString("<pre><code>" + escaped + "</code></pre>")
		case models.BlockImage:
			b.WriteString(`<img src="` + block.Content + `" alt="Blog Image" />`)
		}
	}
	return b.String()
}

// DecodeHTML parses an HTML fragment into a best-effort block sequence. Each
// top-level element becomes one block; PRE reads the element's text content
// so stored escapes are not doubled, unknown tags fall back to paragraphs,
// and a fragment with no element children yields a single paragraph holding
// the raw string. This is a one-shot migration aid for posts saved without a
// block snapshot, not a reliable round-trip.
func DecodeHTML(html string) []models.Block {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []models.Block{{ID: NewBlockID(), Type: models.BlockParagraph, Content: html}}
	}

	children := doc.Find("body").Children()
	if children.Length() == 0 {
		return []models.Block{{ID: NewBlockID(), Type: models.BlockParagraph, Content: html}}
	}

	blocks := make([]models.Block, 0, children.Length())
	children.Each(func(_ int, sel *goquery.Selection) {
		block := models.Block{ID: NewBlockID(), Type: models.BlockParagraph}
		inner, _ := sel.Html()
		block.Content = inner

		switch goquery.NodeName(sel) {
		case "h1":
			block.Type = models.BlockHeading1
		case "h2":
			block.Type = models.BlockHeading2
		case "blockquote":
			block.Type = models.BlockQuote
		case "pre":
			block.Type = models.BlockCode
			block.Content = sel.Text()
		}
		blocks = append(blocks, block)
	})
	return blocks
}
