package models

import "github.com/bytedance/sonic"

// LogEntry is one line of the admin audit journal.
type LogEntry struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Action string `json:"action"`
}

// UnmarshalJSON tolerates legacy entries without or with string ids.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var doc struct {
		ID     flexInt64 `json:"id"`
		Date   string    `json:"date"`
		Action string    `json:"action"`
	}
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return err
	}
	*e = LogEntry{ID: int64(doc.ID), Date: doc.Date, Action: doc.Action}
	return nil
}

// EntryID implements Identified.
func (e LogEntry) EntryID() int64 { return e.ID }

// WithID implements Identified.
func (e LogEntry) WithID(id int64) LogEntry {
	e.ID = id
	return e
}

// ChatEntry is one message of the public chat.
type ChatEntry struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Author  string `json:"nom"`
	Message string `json:"message"`
}

// UnmarshalJSON tolerates legacy entries without or with string ids.
func (e *ChatEntry) UnmarshalJSON(data []byte) error {
	var doc struct {
		ID      flexInt64 `json:"id"`
		Date    string    `json:"date"`
		Author  string    `json:"nom"`
		Message string    `json:"message"`
	}
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return err
	}
	*e = ChatEntry{ID: int64(doc.ID), Date: doc.Date, Author: doc.Author, Message: doc.Message}
	return nil
}

// EntryID implements Identified.
func (e ChatEntry) EntryID() int64 { return e.ID }

// WithID implements Identified.
func (e ChatEntry) WithID(id int64) ChatEntry {
	e.ID = id
	return e
}

// EntryID implements Identified.
func (r Record) EntryID() int64 { return r.ID }

// WithID implements Identified.
func (r Record) WithID(id int64) Record {
	r.ID = id
	return r
}

// Identified is an element of a JSON document keyed by integer id.
type Identified[T any] interface {
	EntryID() int64
	WithID(id int64) T
}
