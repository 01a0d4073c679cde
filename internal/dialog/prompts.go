package dialog

import (
	"fmt"
	"strings"
	"time"
)

// Token budgets per call class, matching what the service has been tuned on.
const (
	authMaxTokens   = 300
	answerMaxTokens = 400
	menuMaxTokens   = 300
)

// TodayLine renders the date the way members read it in replies.
func TodayLine(now time.Time) string {
	return now.Format("Monday, January 2, 2006")
}

func systemPreamble(community string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful assistant for %s members.\n\n", community)
	fmt.Fprintf(&b, "Today's Date Information:\n- Today is: %s\n\n", TodayLine(now))
	b.WriteString("Guidelines:\n")
	b.WriteString("- Be friendly, professional, and concise for WhatsApp.\n")
	b.WriteString("- Use emojis and WhatsApp formatting (*bold*, _italic_) appropriately.\n")
	b.WriteString("- Base your answers strictly on the provided content. If info isn't there, say so.\n")
	b.WriteString("- For authentication, be VERY lenient with matching names and dates as instructed.\n")
	fmt.Fprintf(&b, "- When asked about events \"today\", check against today's date: %s\n\n", now.Format("02-01-2006"))
	b.WriteString("User Query and Content:\n---\n")
	return b.String()
}

func authPrompt(community, userInput, corpus string, now time.Time) string {
	var b strings.Builder
	b.WriteString(systemPreamble(community, now))
	fmt.Fprintf(&b, "You are authenticating a user for %s member support with VERY LENIENT matching criteria.\n\n", community)
	fmt.Fprintf(&b, "User provided information: %q\n\n", userInput)
	fmt.Fprintf(&b, "Available member database and content:\n%s\n\n", corpus)
	b.WriteString(`Authentication Instructions - BE VERY LENIENT:
1. Look for member information (names, DOBs).
2. For NAME matching, accept: First names only, partial names, nicknames, typos.
3. For DATE matching, accept ANY format: DD-MM-YYYY, DD/MM/YY, 15 March, 2-digit or 4-digit years.
4. If partial info matches 2-3 people, ask for more detail.
5. Response format:
   - If confident match found: "MATCH_FOUND: [member_name]"
   - If multiple possible matches: "MULTIPLE_MATCHES: [list names] - Please specify which one"
   - If partial match needs clarification: "NEED_MORE_INFO: [specific question]"
   - Only use "NO_MATCH" if absolutely no reasonable connection found.

REMEMBER: Be generous! It's better to authenticate a real member with partial info than to reject them.
`)
	return b.String()
}

func answerPrompt(community, question, memberName, corpus, historyContext string, now time.Time) string {
	var b strings.Builder
	b.WriteString(systemPreamble(community, now))
	fmt.Fprintf(&b, "An authenticated %s member has a question.\n", community)
	fmt.Fprintf(&b, "User's Question: %q\n\n", question)
	b.WriteString("Your task is to answer this question using ONLY the full content provided below.\n")
	b.WriteString("The content includes all available information: member details, events, birthdays, photo links, etc.\n")
	b.WriteString("Search the entire content to find the answer.\n")
	b.WriteString("If the information to answer the question is not in the content, you MUST state that you cannot find the information.\n\n")
	fmt.Fprintf(&b, "--- FULL CONTENT START ---\n%s\n--- FULL CONTENT END ---\n\n", corpus)
	b.WriteString("Additional context for you (do not state this to the user):\n")
	fmt.Fprintf(&b, "- Authenticated Member Name: %s\n", memberName)
	fmt.Fprintf(&b, "- Recent Conversation History:\n%s\n", historyContext)
	return b.String()
}

func menuPrompt(community, corpus string, now time.Time) string {
	var b strings.Builder
	b.WriteString(systemPreamble(community, now))
	fmt.Fprintf(&b, "Extract and format the main menu from the full content below for a WhatsApp display.\n\n---CONTENT---\n%s", corpus)
	return b.String()
}
