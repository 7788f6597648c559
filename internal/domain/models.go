package domain

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&PasswordReset{},
		&CleanerProfile{},
		&CustomerProfile{},
		&Conversation{},
		&ChatMessage{},
		&Booking{},
		&ServicePrice{},
		&Notification{},
		&UserPresence{},
		&UserPreferences{},
	}
}
