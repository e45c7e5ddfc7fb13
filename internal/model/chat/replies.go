package chat

// Greeting is the first bot message of every conversation.
const Greeting = "नमस्कार! मी शेतकरी मित्र आहे. मी तुम्हाला शेतीविषयक सल्ला देण्यासाठी येथे आहे. तुम्ही मराठी, हिंदी किंवा इंग्रजीमध्ये विचारू शकता."

// FallbackReply replaces an answer that could not be produced.
const FallbackReply = "मला माफ करा, मला तुमच्या प्रश्नाचे उत्तर देण्यात अडचण येत आहे. कृपया पुन्हा प्रयत्न करा. | Sorry, I'm having trouble answering your question. Please try again."
