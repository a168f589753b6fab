package notion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
)

// Service reads proposal documents from Notion
type Service interface {
	// FetchPage retrieves a page and its full block tree
	FetchPage(ctx context.Context, pageID string) (*Page, error)
}

// Page is a Notion page flattened for evaluation
type Page struct {
	ID             string
	Title          string
	URL            string
	LastEditedTime time.Time
	Blocks         Blocks
}

// Proposal renders the page as a single proposal text: title first, then the body as Markdown
func (p *Page) Proposal() string {
	body := strings.TrimSpace(p.Blocks.Markdown())
	switch {
	case p.Title == "":
		return body
	case body == "":
		return p.Title
	default:
		return p.Title + "\n\n" + body
	}
}

// Block is a simplified Notion block. Kind holds the Notion block type name.
type Block struct {
	Kind     string
	Text     string
	Language string
	Checked  bool
	Children Blocks
}

type Blocks []Block

// Markdown renders the block tree. Nested blocks are indented two spaces per level.
func (b Blocks) Markdown() string {
	var sb strings.Builder
	b.render(&sb, 0)
	return sb.String()
}

func (b Blocks) render(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	number := 0

	for _, block := range b {
		if block.Kind == "numbered_list_item" {
			number++
		} else {
			number = 0
		}

		switch block.Kind {
		case "heading_1", "heading_2", "heading_3":
			level := int(block.Kind[len(block.Kind)-1] - '0')
			fmt.Fprintf(sb, "%s%s %s\n", indent, strings.Repeat("#", level), block.Text)
		case "bulleted_list_item":
			fmt.Fprintf(sb, "%s- %s\n", indent, block.Text)
		case "numbered_list_item":
			fmt.Fprintf(sb, "%s%d. %s\n", indent, number, block.Text)
		case "to_do":
			mark := " "
			if block.Checked {
				mark = "x"
			}
			fmt.Fprintf(sb, "%s- [%s] %s\n", indent, mark, block.Text)
		case "quote", "callout":
			fmt.Fprintf(sb, "%s> %s\n", indent, block.Text)
		case "code":
			fmt.Fprintf(sb, "%s```%s\n%s%s\n%s```\n", indent, block.Language, indent, block.Text, indent)
		case "divider":
			fmt.Fprintf(sb, "%s---\n", indent)
		default:
			if block.Text != "" {
				fmt.Fprintf(sb, "%s%s\n", indent, block.Text)
			}
		}

		if len(block.Children) > 0 {
			block.Children.render(sb, depth+1)
		}
	}
}

// richText joins rich text segments, keeping inline Markdown formatting
func richText(segments []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range segments {
		text := rt.PlainText
		if a := rt.Annotations; a != nil {
			if a.Code {
				text = "`" + text + "`"
			}
			if a.Bold {
				text = "**" + text + "**"
			}
			if a.Italic {
				text = "*" + text + "*"
			}
			if a.Strikethrough {
				text = "~~" + text + "~~"
			}
		}
		if rt.Href != "" {
			text = "[" + text + "](" + rt.Href + ")"
		}
		sb.WriteString(text)
	}
	return sb.String()
}

var pageIDPattern = regexp.MustCompile(`([0-9a-fA-F]{8}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{4}-?[0-9a-fA-F]{12})(?:[?#].*)?$`)

// ParsePageID accepts a bare page ID (dashed or not) or a page URL and
// returns the 32 character hex ID.
func ParsePageID(s string) (string, error) {
	m := pageIDPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", goerr.New("invalid Notion page reference", goerr.V("page", s))
	}
	return strings.ToLower(strings.ReplaceAll(m[1], "-", "")), nil
}
