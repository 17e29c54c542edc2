package notification

import (
	"fmt"
	"strings"
)

// Type は通知の種類。
type Type string

const (
	// TypeReservation は予約確定の通知。
	TypeReservation Type = "reservation"
	// TypeCancellation は予約キャンセルの通知。
	TypeCancellation Type = "cancellation"
	// TypeCheckout はチェックアウト後のお礼の通知。
	TypeCheckout Type = "checkout"
	// TypeInit はユーザー登録完了の通知。
	TypeInit Type = "init"
)

// defaultName は宛名が無い場合に使う名前。
const defaultName = "Guest"

// Valid は既知の通知種別かを返す。
func (t Type) Valid() bool {
	switch t {
	case TypeReservation, TypeCancellation, TypeCheckout, TypeInit:
		return true
	default:
		return false
	}
}

// Message は送信するメールの件名と本文。
type Message struct {
	Subject string
	Body    string
}

// templates は通知種別ごとの件名と本文の書式。本文の %s には宛名が入る。
var templates = map[Type]Message{
	TypeReservation: {
		Subject: "Booking Confirmed! ✅",
		Body:    "Hello %s,\n\nYour reservation has been confirmed. We look forward to welcoming you!\n\nBookie",
	},
	TypeCancellation: {
		Subject: "Booking Canceled ❌",
		Body:    "Hello %s,\n\nYour reservation has been canceled. We hope to see you another time.\n\nBookie",
	},
	TypeCheckout: {
		Subject: "Thank You for Staying! 🏨",
		Body:    "Hello %s,\n\nThank you for staying with us. We hope you enjoyed your visit!\n\nBookie",
	},
	TypeInit: {
		Subject: "Welcome to Bookie! 👋",
		Body:    "Hello %s,\n\nYour account has been created. You can now book rooms with Bookie.\n\nBookie",
	},
}

// Compose は通知種別と宛名からメールを組み立てる。宛名が空の場合は "Guest" を使う。
func Compose(t Type, name string) (Message, error) {
	tmpl, ok := templates[t]
	if !ok {
		return Message{}, fmt.Errorf("未対応の通知種別です: %q", t)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}
	return Message{
		Subject: tmpl.Subject,
		Body:    fmt.Sprintf(tmpl.Body, name),
	}, nil
}
