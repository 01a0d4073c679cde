package engine

// Canned reply texts. WhatsApp formatting: *bold*, _italic_, > quote.
const (
	replyWelcomeBanner = "👋 *Welcome to %s Member Support!*\n\n📅 Today is %s\n\nTo access member information, please provide your *name and date of birth* (e.g., *John Doe, 15-03-1985*)."

	replyAuthenticated = "✅ *Welcome, %s!* You're now authenticated."

	replyOpenPrompt = "\n\nHow can I help you today?"

	replyPendingAnswered = "%s\n\nRegarding your earlier question:\n> \"_%s_\"\n\n%s"

	replyCaptureQuestion = "👍 *Sure, I can help with that!* But first, I need to verify your identity.\n\n> \"_%s_\"\n\n🔐 Please provide your *name and date of birth* to continue."

	replyClarifyPrefix = "🤔 "

	replyRetry = "❌ I couldn't match those details. Please try again.\n\n_You have %d attempt(s) remaining._"

	replyLockout = "❌ *Authentication failed* after multiple attempts. Please contact the admin or type 'reset' to try again."

	replyTransient = "😔 I'm having trouble processing your request right now. Please try again in a moment."

	replyUnexpected = "😔 An unexpected error occurred. Please try again."
)

// resetCommands always recreate the session, whatever its state.
var resetCommands = map[string]bool{
	"reset": true, "restart": true, "start": true,
	"hi": true, "hello": true, "main": true, "menu": true, "9": true,
}

// greetingCommands get the static welcome banner; the rest of the reset set
// gets the corpus-derived menu.
var greetingCommands = map[string]bool{
	"hi": true, "hello": true, "start": true,
}
