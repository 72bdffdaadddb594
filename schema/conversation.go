package schema

// Conversation is an ordered sequence of chat messages.
// It is owned by a single run at a time and is not safe for concurrent mutation.
type Conversation []Message

// NewConversation starts a conversation with an optional system prompt and a user turn.
func NewConversation(system, user string) Conversation {
	conv := make(Conversation, 0, 2)
	if system != "" {
		conv = append(conv, SystemMessage(system))
	}
	return append(conv, UserMessage(user))
}

// Clone deep-copies the conversation.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	out := make(Conversation, len(c))
	for i, msg := range c {
		out[i] = msg.Clone()
	}
	return out
}

// Append adds messages at the end.
func (c *Conversation) Append(msgs ...Message) {
	*c = append(*c, msgs...)
}

// System returns the first system message, if any.
func (c Conversation) System() (Message, bool) {
	for _, msg := range c {
		if msg.Role == RoleSystem {
			return msg, true
		}
	}
	return Message{}, false
}

// WithoutSystem returns a copy of the conversation with every system message removed.
func (c Conversation) WithoutSystem() Conversation {
	out := make(Conversation, 0, len(c))
	for _, msg := range c {
		if msg.Role == RoleSystem {
			continue
		}
		out = append(out, msg.Clone())
	}
	return out
}

// Has reports whether any message has the given role.
func (c Conversation) Has(role Role) bool {
	for _, msg := range c {
		if msg.Role == role {
			return true
		}
	}
	return false
}

// Roles lists message roles in order.
func (c Conversation) Roles() []Role {
	roles := make([]Role, len(c))
	for i, msg := range c {
		roles[i] = msg.Role
	}
	return roles
}

// Last returns the final message, if any.
func (c Conversation) Last() (Message, bool) {
	if len(c) == 0 {
		return Message{}, false
	}
	return c[len(c)-1], true
}
