package utils

import (
	"errors"
	"net/smtp"
	"net/textproto"

	"contract-admin/config"

	"github.com/jordan-wright/email"
)

var ErrEmailDisabled = errors.New("email not configured")

const (
	EmailText = 1
	EmailHTML = 2
)

// NewEmail builds the message for the configured recipients.
func NewEmail(conf config.EmailConfig, data []byte, dataType int) *email.Email {
	e := &email.Email{
		To:      conf.To,
		Cc:      conf.Cc,
		From:    conf.From,
		Subject: conf.Subject,
		Headers: textproto.MIMEHeader{},
	}
	if dataType == EmailText {
		e.Text = data
	} else {
		e.HTML = data
	}
	return e
}

// SendEmail delivers data to the configured recipients over smtp.
func SendEmail(conf config.EmailConfig, data []byte, dataType int) error {
	if conf.Host == "" || len(conf.To) == 0 {
		return ErrEmailDisabled
	}
	e := NewEmail(conf, data, dataType)
	return e.Send(conf.Host+":"+conf.Port, smtp.PlainAuth("", conf.Username, conf.Pwd, conf.Host))
}
