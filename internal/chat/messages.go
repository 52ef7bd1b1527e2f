package chat

// Fixed response texts. These bypass the model entirely so refusals and
// failure paths stay deterministic.
const (
	msgAccountNotFound = "I could not find an account with that number. Please check the number and try again."

	msgAccountRestricted = "I can only share account details after you verify your identity. Please authenticate with your account number first."

	msgCardBlockRestricted = "For your security, I can only block cards on a verified session. Please authenticate with your account number first."

	msgCardNotFound = "I could not find a matching card on your profile. Please check the card issuer and type."

	msgCardAlreadyBlocked = "That card is already blocked. If you need further assistance, please visit a branch or call our support line."

	msgGenerationFailed = "I am sorry, I am having trouble responding right now. Please try again in a moment."

	msgEmptyMessage = "Please type a message so I can help you."

	msgSessionReset = "Your session has been reset. How can I help you today?"
)

func welcomeMessage(name string) string {
	return "Welcome back, " + name + "! How can I help you today?"
}

func cardBlockedMessage(issuer, cardType, reference string) string {
	return "Your " + issuer + " " + cardType + " card has been blocked. Your reference number is " +
		reference + ". A replacement card will be available at your branch within 5 working days."
}
