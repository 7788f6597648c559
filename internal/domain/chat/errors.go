package chat

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrCannotChatSelf       = errors.New("cannot start chat with yourself")
	ErrUserNotFound         = errors.New("user not found")
	ErrRolePair             = errors.New("a conversation needs one customer and one cleaner")
	ErrEmptyContent         = errors.New("message content is empty")
	ErrInvalidMessageType   = errors.New("message_type must be text or image")
	ErrInvalidImageURL      = errors.New("image messages need an http(s) URL")
	ErrContentTooLong       = errors.New("message content is too long")
)
