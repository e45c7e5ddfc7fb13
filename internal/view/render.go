package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/shetkarimitra/advisor/internal/model/chat"
)

const (
	botName     = "शेतकरी मित्र"
	userName    = "You"
	thinkingMsg = "शेतकरी मित्र विचार करत आहे..."
)

// renderMessage writes one message with its HH:MM time and numbered sources.
func renderMessage(w io.Writer, msg chat.Message) {
	name := userName
	if msg.IsBot() {
		name = botName
	}

	fmt.Fprintf(w, "[%s] %s: %s\n", msg.Timestamp.Local().Format("15:04"), name, msg.Text)

	if len(msg.Sources) == 0 {
		return
	}
	fmt.Fprintln(w, "  Sources:")
	for i, src := range msg.Sources {
		fmt.Fprintf(w, "  %d. %s", i+1, src.Title)
		if src.URL != "" {
			fmt.Fprintf(w, " <%s>", src.URL)
		}
		fmt.Fprintln(w)
	}
}

func renderHelp(w io.Writer) {
	lines := []string{
		"Type a question in Marathi, Hindi or English and press Enter.",
		"  /mic          start or stop voice input",
		"  /speak on|off read replies aloud automatically",
		"  /say          read the last reply aloud",
		"  /stop         stop reading aloud",
		"  /history      show the stored conversation",
		"  /session      show the session id",
		"  /quit         exit",
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
