package discord

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DeleteEmoji = "❌"
	EditEmoji   = "📝"
	// DumpLinkGlyph ведет из переписанного сообщения к записи в канале дампа
	DumpLinkGlyph = "🔻"
)

const (
	msgMisconfigured = "No dump channel is set for this server. Use `%ssetdump` in the channel that should receive roll logs, or roll inside a thread."
	msgInvalidRoll   = "Could not roll: %v"
	msgEditBusy      = "That message is already being edited, try again in a moment."
	msgNotEditable   = "That message has no roll log link, so it can't be edited here."
	msgEditTimeout   = "Edit timed out, the message was left unchanged."
	msgEdited        = "Message edited."
	msgTooLong       = "That message is too long after rolling, so it was left as is."
)

// MaxMessageLength лимит Discord на текст одного сообщения, в символах.
const MaxMessageLength = 2000

// maxSnowflakeLength самый длинный id сообщения, под который резервируется ссылка на дамп.
const maxSnowflakeLength = 20

var dumpLinkPattern = regexp.MustCompile(" \\[`?" + DumpLinkGlyph + "`?\\]\\(https://[^\\s)]+\\)$")

// JumpURL постоянная ссылка на сообщение.
func JumpURL(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// DumpMessage запись для канала дампа: заголовок и по строке на бросок.
func DumpMessage(persona, channelName string, lines []string) string {
	return fmt.Sprintf("**%s** in #%s:\n%s", persona, channelName, strings.Join(lines, "\n"))
}

// FitsMessage проверяет лимит Discord в символах, а не в байтах.
func FitsMessage(content string) bool {
	return utf8.RuneCountInString(content) <= MaxMessageLength
}

func AppendDumpLink(content, link string) string {
	return fmt.Sprintf("%s [`%s`](%s)", content, DumpLinkGlyph, link)
}

// SplitDumpLink отделяет ссылку на дамп в конце сообщения.
// suffix начинается с пробела и дописывается к новому тексту как есть.
func SplitDumpLink(content string) (body, suffix string, ok bool) {
	loc := dumpLinkPattern.FindStringIndex(content)
	if loc == nil {
		return content, "", false
	}
	return content[:loc[0]], content[loc[0]:], true
}

// EditPrompt текст сообщения цитатой, так разметка внутри него не ломает запрос.
func EditPrompt(jumpURL, body string, timeout time.Duration) string {
	return fmt.Sprintf("Editing %s\n%s\nSend the new text for this message within %s.", jumpURL, quoteBlock(body), timeout.Round(time.Second))
}

func quoteBlock(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
