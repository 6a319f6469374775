package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hearthledger/hearth/internal/recognition"
)

const receiptTask = "You read photos of shop receipts, bank app screenshots and payment confirmations.\n" +
	"Extract EVERY purchase or payment visible in the image as a separate transaction.\n"

const audioTask = "You listen to a voice note in which a family member dictates what they spent or earned.\n" +
	"Extract EVERY transaction mentioned as a separate entry.\n"

const outputRules = "Return STRICT JSON only: an object {\"transactions\": [...]}.\n" +
	"Each transaction has these fields:\n" +
	"- \"description\": string, short and without times of day or route details\n" +
	"- \"amount\": number, always positive\n" +
	"- \"category\": string, the name of one category from the list below\n" +
	"- \"subCategory\": string or omitted, the name of one subcategory of that category\n" +
	"- \"date\": string \"YYYY-MM-DD\" or omitted when unknown\n" +
	"- \"time\": string \"HH:MM\" or omitted when unknown\n" +
	"- \"type\": \"expense\" or \"income\"\n\n" +
	"Rules:\n" +
	"- Ignore bonus points, cashback and loyalty accruals.\n" +
	"- If nothing can be extracted, return {\"transactions\": []}.\n" +
	"- Do NOT wrap the response in code fences.\n"

func buildPrompt(kind recognition.Kind, h recognition.Hints, now time.Time) (string, error) {
	var b strings.Builder

	if kind == recognition.KindAudio {
		b.WriteString(audioTask)
	} else {
		b.WriteString(receiptTask)
	}

	fmt.Fprintf(&b, "Today is %s.\n\n", now.Format(time.DateOnly))
	b.WriteString(outputRules)

	if len(h.Categories) > 0 {
		b.WriteString("\nCategories:\n")

		for _, c := range h.Categories {
			fmt.Fprintf(&b, "- %s", c.Name)

			var subs []string

			for _, s := range h.SubCategories {
				if s.CategoryID == c.ID {
					subs = append(subs, s.Name)
				}
			}

			if len(subs) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(subs, ", "))
			}

			b.WriteString("\n")
		}
	}

	if len(h.RecentTransactions) > 0 {
		recent, err := json.Marshal(h.RecentTransactions)
		if err != nil {
			return "", fmt.Errorf("encode recent transactions: %w", err)
		}

		b.WriteString("\nRecent transactions of this family, for naming and categorisation style:\n")
		b.Write(recent)
		b.WriteString("\n")
	}

	return b.String(), nil
}
