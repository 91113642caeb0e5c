package entity

// Models lists every table owned by the procurement store.
func Models() []interface{} {
	return []interface{}{
		&Purchase{},
		&Notification{},
		&Attachment{},
		&SequenceState{},
	}
}
