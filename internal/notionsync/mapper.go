package notionsync

import (
	"fmt"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/jomei/notionapi"
)

// Property names of the Notion transactions database.
const (
	PropName     = "Name"
	PropKey      = "Transaction Key"
	PropDate     = "Date"
	PropAmount   = "Amount"
	PropType     = "Type"
	PropCategory = "Category"
	PropRun      = "Import Run"
)

// TransactionKey identifies a record across syncs: the import run plus the
// record's row id.
func TransactionKey(runID string, tx domain.Transaction) string {
	return fmt.Sprintf("%s:%d", runID, tx.ID)
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{
				Content: content,
			},
		},
	}
}

// TransactionToNotionProperties converts a record to Notion properties.
// Pages are titled with the description, or the category when it is empty.
func TransactionToNotionProperties(runID string, tx domain.Transaction) notionapi.Properties {
	title := tx.Description
	if title == "" {
		title = tx.Category
	}
	date := notionapi.Date(tx.Date.In(time.UTC))

	return notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Title: richText(title),
		},
		PropKey: notionapi.RichTextProperty{
			RichText: richText(TransactionKey(runID, tx)),
		},
		PropRun: notionapi.RichTextProperty{
			RichText: richText(runID),
		},
		PropDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &date,
			},
		},
		PropAmount: notionapi.NumberProperty{
			Number: tx.SignedAmount().InexactFloat64(),
		},
		PropType: notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Type),
			},
		},
		PropCategory: notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		},
	}
}

// extractTransactionKey reads the key property of an existing page.
func extractTransactionKey(page notionapi.Page) string {
	if prop, ok := page.Properties[PropKey]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok {
			if len(rt.RichText) > 0 {
				return rt.RichText[0].PlainText
			}
		}
	}
	return ""
}
