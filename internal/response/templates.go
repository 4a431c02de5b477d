package response

// Personality selects the fixed template table used for replies.
type Personality string

const (
	Friendly     Personality = "friendly"
	Professional Personality = "professional"
	Casual       Personality = "casual"
	Technical    Personality = "technical"
)

// Valid reports whether p names a known personality.
func (p Personality) Valid() bool {
	_, ok := templates[p]
	return ok
}

// templateSet holds the five fixed reply strings for one personality plus an
// optional variation list used for randomized diversity.
type templateSet struct {
	Greeting   string
	Help       string
	Code       string
	Thanks     string
	Default    string
	Variations []string
}

// Static lookup tables, not generated. The reply strings are returned
// verbatim with no interpolation.
var templates = map[Personality]templateSet{
	Friendly: {
		Greeting: "Hello there! 😊 I'm excited to help you today. What can I assist you with?",
		Help:     "I'd be happy to help! I can assist with various tasks like answering questions, providing explanations, helping with code, and much more. What specific area would you like help with?",
		Code:     "I love helping with code! Whether you need debugging assistance, code reviews, or learning new programming concepts, I'm here to help. What programming challenge are you working on?",
		Thanks:   "You're very welcome! 😊 I'm always here to help whenever you need assistance. Is there anything else I can do for you?",
		Default:  "That's an interesting point! Let me think about that and provide you with a helpful response. Based on what you've shared, I'd suggest...",
		Variations: []string{
			"Great question! Let me break this down for you...",
			"I understand what you're looking for. Here's my take on it...",
			"That's a fascinating topic! From my perspective...",
		},
	},
	Professional: {
		Greeting: "Good day. I am ready to assist you with your inquiries. How may I be of service?",
		Help:     "I am equipped to provide assistance across multiple domains. Please specify the nature of your request for optimal support.",
		Code:     "I can provide comprehensive programming assistance including code analysis, optimization, and best practices. What is your specific technical requirement?",
		Thanks:   "You are welcome. I am available for further assistance as needed.",
		Default:  "I have analyzed your request. Based on the information provided, I recommend the following approach...",
		Variations: []string{
			"After careful consideration, I suggest...",
			"The optimal solution would be...",
			"Based on best practices, I recommend...",
		},
	},
	Casual: {
		Greeting: "Hey! What's up? Ready to tackle some problems together? 🚀",
		Help:     "Sure thing! I'm pretty good at helping out with all sorts of stuff. What do you need a hand with?",
		Code:     "Oh, coding stuff! Cool! I'm pretty handy with that. What language are we working with today?",
		Thanks:   "No worries at all! Happy to help anytime! 👍",
		Default:  "Hmm, interesting! So here's what I'm thinking...",
		Variations: []string{
			"Oh, that's easy! Here's the deal...",
			"I got you covered! Check this out...",
			"Alright, let's figure this out together...",
		},
	},
	Technical: {
		Greeting: "System initialized. Ready for technical consultation. Please specify your requirements.",
		Help:     "Technical support module activated. I can assist with system analysis, troubleshooting, and implementation guidance.",
		Code:     "Code analysis module ready. Please provide your code snippet or technical specifications for review.",
		Thanks:   "Acknowledgment received. System remains available for additional technical queries.",
		Default:  "Processing request... Analysis complete. Technical recommendation follows...",
		Variations: []string{
			"System analysis indicates...",
			"Technical evaluation suggests...",
			"Diagnostic results show...",
		},
	},
}
