// Package panel is the host side of the grid editor. It decodes UI
// messages, applies them through the mutation engine, republishes the
// document set and reacts to file watcher events.
//
// The package does not know about transports. A websocket server, the
// terminal UI and the scripted CLI commands all drive the same [Host]
// with their own [Publisher] and [Dialog].
package panel

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/AbelMSG89/json-synchronized/pkg/errors"
	"github.com/AbelMSG89/json-synchronized/pkg/jsonval"
)

// Inbound commands.
const (
	CmdEdit         = "edit"
	CmdAdd          = "add"
	CmdRemove       = "remove"
	CmdRenameKey    = "renameKey"
	CmdTranslate    = "translate"
	CmdShowWarning  = "showWarning"
	CmdInvalidData  = "invalidData"
	CmdConfirmReply = "confirmReply"
)

// Outbound message types.
const (
	TypeJSON     = "json"
	TypeNotify   = "notify"
	TypeConfirm  = "confirm"
	TypeTeardown = "teardown"
	TypeConfig   = "config"
)

// Notification levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Inbound is a message from the UI. Only the fields of its command are
// set.
type Inbound struct {
	Command string `json:"command"`

	Key       []string        `json:"key,omitempty"`
	FileIndex *int            `json:"fileIndex,omitempty"`
	NewValue  json.RawMessage `json:"newValue,omitempty"`

	OldPath []string `json:"oldPath,omitempty"`
	NewKey  string   `json:"newKey,omitempty"`

	Text            string   `json:"text,omitempty"`
	SourceLanguage  string   `json:"sourceLanguage,omitempty"`
	TargetLanguages []string `json:"targetLanguages,omitempty"`

	ID       string `json:"id,omitempty"`
	Accepted bool   `json:"accepted,omitempty"`
}

// DecodeInbound parses a UI message. "type" is accepted in place of
// "command".
func DecodeInbound(data []byte) (Inbound, error) {
	var msg struct {
		Inbound
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed message")
	}
	if msg.Command == "" {
		msg.Command = msg.Type
	}
	if msg.Command == "" {
		return Inbound{}, errors.New(errors.ErrCodeInvalidInput, "message has no command")
	}
	return msg.Inbound, nil
}

// StringValue decodes NewValue as a JSON string.
func (m Inbound) StringValue() (string, error) {
	var s string
	if err := json.Unmarshal(m.NewValue, &s); err != nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s: newValue must be a string", m.Command)
	}
	return s, nil
}

// Value decodes NewValue as a string or an object.
func (m Inbound) Value() (jsonval.Value, error) {
	if len(m.NewValue) > 0 && m.NewValue[0] == '{' {
		obj, err := jsonval.Parse(m.NewValue)
		if err != nil {
			return jsonval.Value{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: newValue", m.Command)
		}
		return jsonval.ObjectValue(obj), nil
	}
	s, err := m.StringValue()
	if err != nil {
		return jsonval.Value{}, errors.New(errors.ErrCodeInvalidInput, "%s: newValue must be a string or an object", m.Command)
	}
	return jsonval.String(s), nil
}

// Outbound is a message to the UI.
type Outbound struct {
	Type string `json:"type"`

	Data *jsonval.Object `json:"data,omitempty"`

	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id,omitempty"`
	Reason  string `json:"reason,omitempty"`

	DefaultLanguage string `json:"defaultLanguage,omitempty"`
	Translation     *bool  `json:"translation,omitempty"`
}

// Encode serializes m.
func (m Outbound) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", m.Type, err)
	}
	return data, nil
}

// JSONMessage carries the full document set, name to body.
func JSONMessage(snapshot *jsonval.Object) Outbound {
	return Outbound{Type: TypeJSON, Data: snapshot}
}

// NotifyMessage carries a user-visible notification.
func NotifyMessage(level, message string) Outbound {
	return Outbound{Type: TypeNotify, Level: level, Message: message}
}

// ConfirmMessage asks the user a yes/no question identified by id.
func ConfirmMessage(id, message string) Outbound {
	return Outbound{Type: TypeConfirm, ID: id, Message: message}
}

// TeardownMessage tells the UI the panel is closing.
func TeardownMessage(reason string) Outbound {
	return Outbound{Type: TypeTeardown, Reason: reason}
}

// ConfigMessage tells the UI the source language and whether translation
// is available.
func ConfigMessage(defaultLanguage string, translation bool) Outbound {
	return Outbound{Type: TypeConfig, DefaultLanguage: defaultLanguage, Translation: &translation}
}
