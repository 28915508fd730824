package internal

import "strings"

// FallbackResponse picks a canned reply from a small keyword rule set.
// Used whenever the completion backend is unreachable; never touches
// tool dispatch.
func FallbackResponse(userMessage string) string {
	lower := strings.ToLower(userMessage)

	switch {
	case containsAny(lower, "hello", "hi", "hey", "greetings"):
		return "Hello! I'm your AI support assistant. How can I help you today?"

	case containsAny(lower, "help", "what can you do", "capabilities"):
		return `I can help you with:

Support tasks:
- Create support tickets
- Check order status
- Answer questions about products and services

Knowledge base:
I have access to documentation about our products, services, and support procedures.

Try asking:
- "What products do you offer?"
- "Check order ORD-001"
- "Create a ticket for billing issue"
- "How do I reset my password?"

Note: I'm currently running in fallback mode. For full AI responses, please make sure the language model service is running.`

	case containsAny(lower, "order", "status", "track"):
		if strings.Contains(lower, "ord-") {
			return "I can help check your order status! However, I need to connect to the order system to get real-time information. Please try again when the AI service is fully available."
		}
		return "To check your order status, please provide your order ID (e.g., ORD-001)."

	case containsAny(lower, "ticket", "support", "issue", "problem"):
		return "I can help create a support ticket for you! Please describe your issue and I'll create a ticket. However, I need the AI service to be fully available to process this properly."

	case containsAny(lower, "product", "service", "offer"):
		return `We offer various products and services:

Products:
- Laptops and desktops
- Smartphones and tablets
- Accessories and peripherals

Services:
- Technical support
- Order tracking
- Billing assistance
- Account management

For specific details about any product or service, please ask again when the AI service is fully available.`

	default:
		return `I understand your question, but I'm currently running in limited mode because the AI service is not responding.

What you can do:
1. Try your question again in a few minutes
2. Contact our support team directly at support@example.com

For urgent assistance, call 1-800-SUPPORT.`
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
