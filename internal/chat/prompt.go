package chat

import (
	"fmt"
	"strings"

	"github.com/ugorjiizu/globus-assessment/internal/directory"
	"github.com/ugorjiizu/globus-assessment/internal/intent"
	"github.com/ugorjiizu/globus-assessment/internal/knowledge"
	"github.com/ugorjiizu/globus-assessment/internal/llm"
)

const baseInstruction = `You are a friendly customer support assistant for Globus Bank.
Answer customer questions clearly and concisely using only the information provided in this conversation.
If you do not have the information needed to answer, say so and suggest contacting a branch.
Never invent account balances, transactions, or product terms.
Keep replies short and conversational.`

// recentTransactions caps how many transactions per account make it into
// the prompt.
const recentTransactions = 5

// Composer assembles the model request for a turn, enforcing character
// budgets so the prompt never outgrows the model context.
//
// Budget policy: the system instruction and the current message are
// never truncated. When over budget, oldest history turns go first, then
// the lowest-scoring retrieved chunks.
type Composer struct {
	promptBudget    int
	retrievalBudget int
}

// NewComposer creates a composer with the given character budgets.
func NewComposer(promptBudget, retrievalBudget int) *Composer {
	return &Composer{promptBudget: promptBudget, retrievalBudget: retrievalBudget}
}

// Compose returns the system text and the history window for a turn.
// cust is nil for anonymous sessions; results may be empty.
func (c *Composer) Compose(in intent.Intent, cust *directory.Customer, results []knowledge.Result, history []llm.Message, message string) (string, []llm.Message) {
	results = c.fitRetrieval(results)

	system := c.systemText(in, cust, results)
	total := len(system) + historyChars(history) + len(message)

	for total > c.promptBudget && len(history) > 0 {
		drop := 2 // one turn: user message plus assistant reply
		if drop > len(history) {
			drop = len(history)
		}
		total -= historyChars(history[:drop])
		history = history[drop:]
	}

	for total > c.promptBudget && len(results) > 0 {
		results = results[:len(results)-1]
		system = c.systemText(in, cust, results)
		total = len(system) + historyChars(history) + len(message)
	}

	return system, history
}

func (c *Composer) systemText(in intent.Intent, cust *directory.Customer, results []knowledge.Result) string {
	var b strings.Builder
	b.WriteString(baseInstruction)

	if block := customerBlock(in, cust); block != "" {
		b.WriteString("\n\n")
		b.WriteString(block)
	}
	if block := retrievalBlock(results); block != "" {
		b.WriteString("\n\n")
		b.WriteString(block)
	}
	return b.String()
}

// fitRetrieval drops the lowest-scoring chunks until the rendered block
// fits the retrieval budget. Results arrive in descending similarity, so
// trimming from the tail removes the weakest matches.
func (c *Composer) fitRetrieval(results []knowledge.Result) []knowledge.Result {
	for len(results) > 0 && len(retrievalBlock(results)) > c.retrievalBudget {
		results = results[:len(results)-1]
	}
	return results
}

func retrievalBlock(results []knowledge.Result) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant product information:")
	for i, r := range results {
		fmt.Fprintf(&b, "\n\n[Source %d: %s]\n%s", i+1, r.Section, r.Text)
	}
	return b.String()
}

// customerBlock renders only the profile fields the intent needs:
// accounts and recent transactions for account questions, the card list
// for block requests, the bare name otherwise.
func customerBlock(in intent.Intent, cust *directory.Customer) string {
	if cust == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The customer you are speaking with is %s.", cust.Name)

	switch in {
	case intent.AccountInformation:
		b.WriteString("\nTheir accounts:")
		for _, acc := range cust.Accounts {
			fmt.Fprintf(&b, "\n- %s account %s (%s): balance %.2f %s, opened %s",
				acc.AccountType, acc.Number, acc.ProductType, acc.Balance, acc.Currency, acc.OpenDate)
			writeTransactions(&b, cust.Transactions[acc.Number])
		}
	case intent.CardBlockRequest:
		if len(cust.Cards) == 0 {
			b.WriteString("\nThey have no cards on file. Tell them no card was found and advise them to visit a branch.")
			break
		}
		b.WriteString("\nThe customer wants to block a card. Never confirm a block without explicit confirmation.")
		if len(cust.Cards) == 1 {
			b.WriteString("\nThey have one card; state which card it is and ask them to confirm they want it blocked.")
		} else {
			b.WriteString("\nThey have several cards; list them and ask which one should be blocked.")
		}
		b.WriteString("\nOnce they confirm a specific card, acknowledge the request and tell them the block has been initiated and a confirmation will follow.")
		b.WriteString("\nTheir cards:")
		for _, card := range cust.Cards {
			fmt.Fprintf(&b, "\n- %s %s card on account %s, status %s",
				card.Issuer, card.Type, card.AccountNumber, card.Status)
		}
	}
	return b.String()
}

func writeTransactions(b *strings.Builder, txns []directory.Transaction) {
	if len(txns) == 0 {
		return
	}
	n := len(txns)
	if n > recentTransactions {
		txns = txns[n-recentTransactions:]
	}
	b.WriteString("\n  Recent transactions:")
	for _, t := range txns {
		fmt.Fprintf(b, "\n  - %s %s %.2f to %s (%s)",
			t.Date.Format("2006-01-02"), t.Type, t.Amount, t.Destination, t.Status)
	}
}

func historyChars(history []llm.Message) int {
	total := 0
	for _, m := range history {
		total += len(m.Text)
	}
	return total
}
