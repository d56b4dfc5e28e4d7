package bot

// Message is an inbound chat message, independent of the messaging platform.
type Message struct {
	ChatID int64
	UserID int64
	Text   string
}

// Reply is the text to send back to a chat.
type Reply struct {
	ChatID int64
	Text   string
}

// Config holds the fixed bot copy.
type Config struct {
	Greeting     string
	Help         string
	ErrorReply   string
	CreatorLabel string
}
