package mailer

import "fmt"

// Templates builds the account emails for one site.
type Templates struct {
	SiteName string
	From     string
}

func (t Templates) Welcome(to string) Message {
	return Message{
		To:      to,
		From:    t.From,
		Subject: fmt.Sprintf("Welcome to %s!", t.SiteName),
		Text: fmt.Sprintf("Greetings!\n\n"+
			"Thank you for joining our community.\n"+
			"Feel free to email us at this address if you have "+
			"any questions about %s.\n"+
			"Good luck with the challenges!\n\n"+
			"- the %s Team", t.SiteName, t.SiteName),
	}
}

// ResetRequest carries the link to the reset form for token.
func (t Templates) ResetRequest(to, host, token string) Message {
	return Message{
		To:      to,
		From:    t.From,
		Subject: fmt.Sprintf("Reset your %s password", t.SiteName),
		Text: fmt.Sprintf("You are receiving this email because you (or someone else)\n"+
			"requested we reset your %s account's password.\n\n"+
			"Please click on the following link, or paste this into your\n"+
			"browser to complete the process:\n\n"+
			"http://%s/reset/%s\n\n"+
			"If you did not request this, please ignore this email and\n"+
			"your password will remain unchanged.\n", t.SiteName, host, token),
	}
}

func (t Templates) PasswordChanged(to string) Message {
	return Message{
		To:      to,
		From:    t.From,
		Subject: fmt.Sprintf("Your %s password has been changed", t.SiteName),
		Text: fmt.Sprintf("Hello,\n\n"+
			"This email is confirming that you requested to "+
			"reset your password for your %s account. "+
			"This is your email: %s\n", t.SiteName, to),
	}
}
