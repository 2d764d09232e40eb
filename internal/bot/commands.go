package bot

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	cmdStatus     = "status"
	cmdApprove    = "approve"
	cmdDisapprove = "disapprove"
	cmdStart      = "start"
	cmdHelp       = "help"
)

// parseCommand splits "/name@bot arg1 arg2" into its lower-cased name and
// the argument text.  ok is false for plain text and for commands
// addressed to a different bot (when botName is known).
func parseCommand(text, botName string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	head, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], text[i:]
	}
	head = strings.TrimPrefix(head, "/")

	if n, target, addressed := strings.Cut(head, "@"); addressed {
		if botName != "" && !strings.EqualFold(target, botName) {
			return "", "", false
		}
		head = n
	}
	if head == "" {
		return "", "", false
	}

	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// parseUserID expects exactly one positive integer argument.
func parseUserID(args string) (int64, bool) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func helpText(admin bool) string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	b.WriteString("/status - reply light status\n")
	if admin {
		b.WriteString("/approve <user_id> - allow a user to ask for the status\n")
		b.WriteString("/disapprove <user_id> - revoke a user's access\n")
		b.WriteString("Forward me a message to learn its author's user id.\n")
	}
	return b.String()
}
