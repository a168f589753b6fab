package notion

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	api *notionapi.Client
}

// New creates a Notion service authenticated with an integration token
func New(token string) (Service, error) {
	if token == "" {
		return nil, goerr.New("Notion API token is required")
	}

	return &client{
		api: notionapi.NewClient(
			notionapi.Token(token),
			notionapi.WithRetry(3), // HTTP 429
		),
	}, nil
}

func (c *client) FetchPage(ctx context.Context, pageID string) (*Page, error) {
	id, err := ParsePageID(pageID)
	if err != nil {
		return nil, err
	}

	obj, err := c.api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get page", goerr.V("pageID", id))
	}

	blocks, err := c.fetchBlocks(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch page blocks", goerr.V("pageID", id))
	}

	return &Page{
		ID:             obj.ID.String(),
		Title:          PageTitle(obj.Properties),
		URL:            obj.URL,
		LastEditedTime: time.Time(obj.LastEditedTime),
		Blocks:         blocks,
	}, nil
}

func (c *client) fetchBlocks(ctx context.Context, blockID string) (Blocks, error) {
	var blocks Blocks
	var cursor notionapi.Cursor

	for {
		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get block children", goerr.V("blockID", blockID))
		}

		for _, obj := range resp.Results {
			block := ConvertBlock(obj)
			if obj.GetHasChildren() {
				children, err := c.fetchBlocks(ctx, obj.GetID().String())
				if err != nil {
					return nil, err
				}
				block.Children = children
			}
			blocks = append(blocks, block)
		}

		if !resp.HasMore {
			return blocks, nil
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}
}

// ConvertBlock maps a Notion API block to Block without its children.
// Unsupported block types keep their kind and carry no text.
func ConvertBlock(obj notionapi.Block) Block {
	block := Block{Kind: string(obj.GetType())}

	switch b := obj.(type) {
	case *notionapi.ParagraphBlock:
		block.Text = richText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		block.Text = richText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		block.Text = richText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		block.Text = richText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		block.Text = richText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		block.Text = richText(b.NumberedListItem.RichText)
	case *notionapi.QuoteBlock:
		block.Text = richText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		block.Text = richText(b.Callout.RichText)
	case *notionapi.ToggleBlock:
		block.Text = richText(b.Toggle.RichText)
	case *notionapi.ToDoBlock:
		block.Text = richText(b.ToDo.RichText)
		block.Checked = b.ToDo.Checked
	case *notionapi.CodeBlock:
		block.Text = richText(b.Code.RichText)
		block.Language = b.Code.Language
	}

	return block
}

// PageTitle returns the plain text of the page's title property
func PageTitle(props notionapi.Properties) string {
	for _, prop := range props {
		switch p := prop.(type) {
		case *notionapi.TitleProperty:
			return plainText(p.Title)
		case notionapi.TitleProperty:
			return plainText(p.Title)
		}
	}
	return ""
}

func plainText(segments []notionapi.RichText) string {
	var s string
	for _, rt := range segments {
		s += rt.PlainText
	}
	return s
}
