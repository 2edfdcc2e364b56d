// Package email sends rendered campaign and test emails.
//
// EmailSender abstracts the provider: NewPostmarkClient delivers through
// Postmark with open/click tracking, NewDevSender writes messages to disk
// for local runs. Pick one from Config.UsePostmark at wiring time.
package email
